package xcs

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mesh-intelligence/botsync/pkg/snapshot"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

// get fetches path and decodes it into v.
func (c *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	data, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return decode(path, data, v)
}

// list fetches a collection endpoint. A response without a results array
// is an empty response; an empty array is a valid, empty collection.
func list[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var env snapshot.List[T]
	if err := c.get(ctx, path, query, &env); err != nil {
		return nil, err
	}
	if env.Results == nil {
		return nil, fmt.Errorf("%w: %s returned no results", types.ErrEmptyResponse, path)
	}
	return env.Results, nil
}

// Versions fetches the server and tool versions.
func (c *Client) Versions(ctx context.Context) (*snapshot.Versions, error) {
	var v snapshot.Versions
	if err := c.get(ctx, "versions", nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Bots lists every bot on the server.
func (c *Client) Bots(ctx context.Context) ([]snapshot.Bot, error) {
	return list[snapshot.Bot](ctx, c, "bots", nil)
}

// Bot fetches one bot with its configuration.
func (c *Client) Bot(ctx context.Context, id string) (*snapshot.Bot, error) {
	path := "bots/" + url.PathEscape(id)
	var b snapshot.Bot
	if err := c.get(ctx, path, nil, &b); err != nil {
		return nil, err
	}
	if b.ID == "" {
		return nil, fmt.Errorf("%w: %s returned a bot without an identifier", types.ErrEmptyResponse, path)
	}
	return &b, nil
}

// Stats fetches the statistics of a bot.
func (c *Client) Stats(ctx context.Context, botID string) (*snapshot.Stats, error) {
	var s snapshot.Stats
	if err := c.get(ctx, "bots/"+url.PathEscape(botID)+"/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Integrations lists the integrations of a bot. A positive last limits the
// listing to the most recent ones.
func (c *Client) Integrations(ctx context.Context, botID string, last int) ([]snapshot.Integration, error) {
	var q url.Values
	if last > 0 {
		q = url.Values{"last": {strconv.Itoa(last)}}
	}
	return list[snapshot.Integration](ctx, c, "bots/"+url.PathEscape(botID)+"/integrations", q)
}

// Integration fetches one integration.
func (c *Client) Integration(ctx context.Context, id string) (*snapshot.Integration, error) {
	path := "integrations/" + url.PathEscape(id)
	var in snapshot.Integration
	if err := c.get(ctx, path, nil, &in); err != nil {
		return nil, err
	}
	if in.ID == "" {
		return nil, fmt.Errorf("%w: %s returned an integration without an identifier", types.ErrEmptyResponse, path)
	}
	return &in, nil
}

// Commits fetches the commits an integration built, grouped by repository.
func (c *Client) Commits(ctx context.Context, integrationID string) ([]snapshot.IntegrationCommits, error) {
	return list[snapshot.IntegrationCommits](ctx, c, "integrations/"+url.PathEscape(integrationID)+"/commits", nil)
}

// Issues fetches the issues of an integration.
func (c *Client) Issues(ctx context.Context, integrationID string) (*snapshot.IssueSet, error) {
	var s snapshot.IssueSet
	if err := c.get(ctx, "integrations/"+url.PathEscape(integrationID)+"/issues", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Devices lists every device known to the server.
func (c *Client) Devices(ctx context.Context) ([]snapshot.Device, error) {
	return list[snapshot.Device](ctx, c, "devices", nil)
}

// StartIntegration queues a new integration of a bot and returns it.
func (c *Client) StartIntegration(ctx context.Context, botID string) (*snapshot.Integration, error) {
	path := "bots/" + url.PathEscape(botID) + "/integrations"
	data, err := c.do(ctx, http.MethodPost, path, nil, struct{}{})
	if err != nil {
		return nil, err
	}
	var in snapshot.Integration
	if err := decode(path, data, &in); err != nil {
		return nil, err
	}
	if in.ID == "" {
		return nil, fmt.Errorf("%w: %s returned an integration without an identifier", types.ErrEmptyResponse, path)
	}
	return &in, nil
}

// CancelIntegration asks the server to cancel a running integration. The
// server answers without a body.
func (c *Client) CancelIntegration(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPost, "integrations/"+url.PathEscape(id)+"/cancel", nil, nil)
	return err
}
