package xcs

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/botsync/pkg/types"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	c, err := New(Endpoint{FQDN: host, Port: port, Scheme: "http", Username: "ci", Password: "secret"},
		WithBackOff(func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), 2)
		}),
	)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestEndpointBaseURL(t *testing.T) {
	tests := []struct {
		name string
		ep   Endpoint
		want string
	}{
		{"defaults", Endpoint{FQDN: "ci.example.com"}, "https://ci.example.com:20343/api"},
		{"explicit", Endpoint{FQDN: "ci.example.com", Port: 8080, Scheme: "http"}, "http://ci.example.com:8080/api"},
		{"ipv6", Endpoint{FQDN: "::1", Port: 443}, "https://[::1]:443/api"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ep.BaseURL())
		})
	}
}

func TestNewRequiresHost(t *testing.T) {
	_, err := New(Endpoint{})
	assert.Error(t, err)
}

func TestBotsDecodesListEnvelope(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/bots", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "ci" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"count":2,"results":[{"_id":"bot-1","name":"Nightly"},{"_id":"bot-2"}]}`))
	})
	c := newTestClient(t, mux)

	bots, err := c.Bots(context.Background())
	require.NoError(t, err)
	require.Len(t, bots, 2)
	assert.Equal(t, "bot-1", bots[0].ID)
	require.NotNil(t, bots[0].Name)
	assert.Equal(t, "Nightly", *bots[0].Name)
	assert.Nil(t, bots[1].Name)
}

func TestIntegrationsPassesLimit(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/bots/bot-1/integrations", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"count":1,"results":[{"_id":"int-1","number":5,"result":"succeeded"}]}`))
	})
	c := newTestClient(t, mux)

	ints, err := c.Integrations(context.Background(), "bot-1", 10)
	require.NoError(t, err)
	assert.Equal(t, "last=10", gotQuery)
	require.Len(t, ints, 1)
	assert.Equal(t, 5, *ints[0].Number)
}

func TestEmptyResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
		call func(*Client) error
	}{
		{"empty body", "", func(c *Client) error { _, err := c.Versions(context.Background()); return err }},
		{"null", "null", func(c *Client) error { _, err := c.Issues(context.Background(), "int-1"); return err }},
		{"no results", `{"count":0}`, func(c *Client) error { _, err := c.Devices(context.Background()); return err }},
		{"undecodable", `{"results":`, func(c *Client) error { _, err := c.Bots(context.Background()); return err }},
		{"record without id", `{"name":"x"}`, func(c *Client) error { _, err := c.Bot(context.Background(), "bot-1"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			err := tt.call(c)
			assert.ErrorIs(t, err, types.ErrEmptyResponse)
			assert.NotErrorIs(t, err, types.ErrTransport)
		})
	}
}

func TestEmptyListIsNotAnEmptyResponse(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":0,"results":[]}`))
	}))
	devices, err := c.Devices(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, devices)
	assert.Empty(t, devices)
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "no such bot", http.StatusNotFound)
	}))

	_, err := c.Bot(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrTransport)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, "no such bot", se.Body)
	assert.Equal(t, int32(1), calls.Load())
}

func TestServerErrorsAreRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, map[string]string{"xcodeVersion": "15.2"})
	}))

	v, err := c.Versions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "15.2", *v.XcodeVersion)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetriesGiveUpWithTransportError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := c.Versions(context.Background())
	assert.ErrorIs(t, err, types.ErrTransport)
	assert.Equal(t, int32(3), calls.Load(), "first attempt plus two retries")
}

func TestConnectionFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	u, _ := url.Parse(srv.URL)
	host, portStr, _ := net.SplitHostPort(u.Host)
	port, _ := strconv.Atoi(portStr)
	srv.Close()

	c, err := New(Endpoint{FQDN: host, Port: port, Scheme: "http"},
		WithBackOff(func() backoff.BackOff { return &backoff.StopBackOff{} }))
	require.NoError(t, err)

	_, err = c.Bots(context.Background())
	assert.ErrorIs(t, err, types.ErrTransport)
}

func TestStartIntegrationIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/bots/bot-1/integrations", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"int-9","number":9,"currentStep":"pending"}`))
	})
	c := newTestClient(t, mux)

	_, err := c.StartIntegration(context.Background(), "bot-1")
	assert.ErrorIs(t, err, types.ErrTransport)
	assert.Equal(t, int32(1), calls.Load())

	in, err := c.StartIntegration(context.Background(), "bot-1")
	require.NoError(t, err)
	assert.Equal(t, "int-9", in.ID)
	assert.Equal(t, types.StepPending, *in.CurrentStep)
}

func TestCancelIntegration(t *testing.T) {
	var cancelled string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/integrations/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
		cancelled = r.PathValue("id")
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)

	require.NoError(t, c.CancelIntegration(context.Background(), "int-1"))
	assert.Equal(t, "int-1", cancelled)
}

func TestCommitsAndIssues(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/integrations/int-1/commits", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":1,"results":[{"_id":"c1","integration":"int-1","commits":{"repo-a":[{"XCSCommitHash":"abc","XCSCommitMessage":"fix"}]}}]}`))
	})
	mux.HandleFunc("GET /api/integrations/int-1/issues", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"buildServiceErrors":[],"testFailures":{"resolvedIssues":[{"_id":"i1"}]}}`))
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	commits, err := c.Commits(ctx, "int-1")
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "abc", commits[0].Commits["repo-a"][0].Hash)

	issues, err := c.Issues(ctx, "int-1")
	require.NoError(t, err)
	buckets := issues.Buckets()
	assert.Len(t, buckets[types.BucketResolvedTestFailures], 1)
	_, ok := buckets[types.BucketBuildServiceErrors]
	assert.True(t, ok)
}
