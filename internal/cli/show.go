package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/botsync/internal/sqlite"
	"github.com/mesh-intelligence/botsync/pkg/types"
)

func newShowCmd(a *app) *cobra.Command {
	var wire bool
	cmd := &cobra.Command{
		Use:   "show <kind> [key]",
		Short: "Display stored entities",
		Long: "Without a key, list every entity of the kind. With a key, print the\n" +
			"entity and the number of entities it owns.\n\nKinds: " + kindList(),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := types.Kind(args[0])
			if !kind.Valid() {
				return fmt.Errorf("%w: %q (valid: %s)", types.ErrUnknownKind, args[0], kindList())
			}
			return a.withBackend(func(b *sqlite.Backend) error {
				sess, err := b.Begin(cmd.Context())
				if err != nil {
					return err
				}
				defer sess.Discard()

				if len(args) == 1 {
					return a.listEntities(cmd, sess, kind)
				}
				if !kind.Keyed() {
					return fmt.Errorf("%s entities have no key; list them without one", kind)
				}
				e := sess.Find(kind, args[1])
				if e == nil {
					return fmt.Errorf("%w: %s %q", types.ErrNotFound, kind, args[1])
				}
				return a.showEntity(cmd, sess, e, wire)
			})
		},
	}
	cmd.Flags().BoolVar(&wire, "wire", false, "print only fields the server reports")
	return cmd
}

func (a *app) listEntities(cmd *cobra.Command, sess *sqlite.Session, kind types.Kind) error {
	es := sess.All(kind)
	out := cmd.OutOrStdout()
	if a.jsonMode {
		rows := make([]entityJSON, 0, len(es))
		for _, e := range es {
			rows = append(rows, newEntityJSON(e, e))
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLOCAL ID\tOWNER\tUPDATED")
	for _, e := range es {
		m := e.Base()
		owner := "-"
		if o := sess.Get(m.OwnerID); o != nil && o.Base().Key != "" {
			owner = string(o.Kind()) + "/" + o.Base().Key
		}
		key := m.Key
		if key == "" {
			key = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", key, m.LocalID, owner, formatTime(m.UpdatedAt))
	}
	return tw.Flush()
}

func (a *app) showEntity(cmd *cobra.Command, sess *sqlite.Session, e types.Entity, wire bool) error {
	var v any = e
	if wire {
		view, err := types.WireView(e)
		if err != nil {
			return err
		}
		v = view
	}
	data, err := json.MarshalIndent(newEntityJSON(e, v), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, string(data))
	if a.jsonMode {
		return nil
	}

	var owned []string
	for _, k := range types.Kinds() {
		if n := len(sess.Children(e.Base().LocalID, k)); n > 0 {
			owned = append(owned, fmt.Sprintf("%s=%d", k, n))
		}
	}
	if len(owned) > 0 {
		fmt.Fprintf(out, "owns: %s\n", strings.Join(owned, " "))
	}
	return nil
}

// entityJSON is the printed form of an entity: its identity plus its
// serialized fields.
type entityJSON struct {
	LocalID string     `json:"local_id"`
	Kind    types.Kind `json:"kind"`
	Key     string     `json:"key,omitempty"`
	OwnerID string     `json:"owner_id,omitempty"`
	Data    any        `json:"data"`
}

func newEntityJSON(e types.Entity, data any) entityJSON {
	m := e.Base()
	return entityJSON{LocalID: m.LocalID, Kind: e.Kind(), Key: m.Key, OwnerID: m.OwnerID, Data: data}
}

func kindList() string {
	names := make([]string, 0, len(types.Kinds()))
	for _, k := range types.Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}
