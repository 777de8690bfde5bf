package types

import "encoding/json"

// LocalFields lists, per kind, the serialized fields that exist only in the
// local graph. They are never sent to or compared against the remote server.
var LocalFields = map[Kind][]string{
	KindServer:      {"last_synced_at"},
	KindBot:         {"last_synced_at"},
	KindIntegration: {"has_retrieved_assets", "has_retrieved_commits", "has_retrieved_issues", "last_synced_at"},
}

// WireView returns the entity's serialized fields minus its local-only
// fields, together with its kind and key.
func WireView(e Entity) (map[string]any, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	view := map[string]any{}
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, err
	}
	for _, f := range LocalFields[e.Kind()] {
		delete(view, f)
	}
	view["kind"] = string(e.Kind())
	if key := e.Base().Key; key != "" {
		view["key"] = key
	}
	return view, nil
}
