package sqlite

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/botsync/pkg/types"
)

func TestReadJSONLSkipsBlankAndMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.jsonl")
	content := "{\"a\":1}\n\nnot json\n{\"b\":2}\n{broken\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := readJSONL(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"a":1}`, string(records[0]))
	assert.JSONEq(t, `{"b":2}`, string(records[1]))
}

func TestReadJSONLMissingFile(t *testing.T) {
	_, err := readJSONL(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteJSONLReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"old\":true}\n"), 0o644))

	records := []json.RawMessage{json.RawMessage(`{"x":1}`), json.RawMessage(`{"y":2}`)}
	require.NoError(t, writeJSONL(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"x\":1}\n{\"y\":2}\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestExportWritesEntitiesAndLinks(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	s := begin(t, b)
	srv, _ := s.Create(types.KindServer, "ci.example.com", "")
	bot, _ := s.Create(types.KindBot, "bot-1", srv.Base().LocalID)
	bot.(*types.Bot).Name = "Nightly"
	integ, _ := s.Create(types.KindIntegration, "int-1", bot.Base().LocalID)
	dev, _ := s.Create(types.KindDevice, "dev-1", "")
	require.NoError(t, s.Link(types.LinkTestedOn, integ.Base().LocalID, dev.Base().LocalID))
	require.NoError(t, s.Save(ctx))

	out := filepath.Join(t.TempDir(), "export")
	require.NoError(t, b.Export(ctx, out))

	entities, err := readJSONL(filepath.Join(out, EntitiesFile))
	require.NoError(t, err)
	require.Len(t, entities, 4)

	byKind := make(map[string]entityRecord)
	for _, raw := range entities {
		var rec entityRecord
		require.NoError(t, json.Unmarshal(raw, &rec))
		byKind[rec.Kind] = rec
	}
	gotBot := byKind[string(types.KindBot)]
	require.NotNil(t, gotBot.RemoteKey)
	assert.Equal(t, "bot-1", *gotBot.RemoteKey)
	require.NotNil(t, gotBot.OwnerID)
	assert.Equal(t, srv.Base().LocalID, *gotBot.OwnerID)
	assert.Contains(t, string(gotBot.Data), `"name":"Nightly"`)
	assert.Nil(t, byKind[string(types.KindServer)].OwnerID)

	links, err := readJSONL(filepath.Join(out, LinksFile))
	require.NoError(t, err)
	require.Len(t, links, 1)
	var link linkRecord
	require.NoError(t, json.Unmarshal(links[0], &link))
	assert.Equal(t, string(types.LinkTestedOn), link.LinkType)
	assert.Equal(t, integ.Base().LocalID, link.FromID)
	assert.Equal(t, dev.Base().LocalID, link.ToID)
}

func TestExportRequiresAttachedBackend(t *testing.T) {
	b := NewBackend()
	err := b.Export(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, types.ErrBackendDetached)
}
