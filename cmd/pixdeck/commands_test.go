package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/pixdeck/internal/adapter"
	"github.com/mmcdole/pixdeck/internal/domain"
)

const (
	img1    = "550e8400-e29b-41d4-a716-446655440000"
	img2    = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	albumID = "01990957-7a91-79c8-bb64-38766a3411e6"
)

// fakeGallery serves the subset of the gallery API the commands use
type fakeGallery struct {
	mu      sync.Mutex
	created []map[string]interface{}
	updated []map[string]interface{}
	deleted []string
}

func (g *fakeGallery) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	path := r.URL.Path
	switch {
	case path == "/traq/messages/search/images":
		w.Write([]byte(`{"totalHits": 2, "hits": ["` + img1 + `", "` + img2 + `"]}`))

	case strings.HasPrefix(path, "/images/"):
		id := strings.TrimPrefix(path, "/images/")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      id,
			"creator": "alice",
			"post":    map[string]string{"id": "p-" + id, "content": "photo " + id[:4]},
		})

	case path == "/albums" && r.Method == http.MethodPost:
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		g.created = append(g.created, body)
		body["id"] = albumID
		body["creator"] = "alice"
		json.NewEncoder(w).Encode(body)

	case path == "/albums" && r.Method == http.MethodGet:
		w.Write([]byte(`[{"id": "` + albumID + `", "title": "Summer", "creator": "alice"}]`))

	case path == "/albums/"+albumID && r.Method == http.MethodGet:
		w.Write([]byte(`{"id": "` + albumID + `", "title": "Summer", "description": "", "creator": "alice", "images": ["` + img1 + `"]}`))

	case path == "/albums/"+albumID && r.Method == http.MethodPut:
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		g.updated = append(g.updated, body)
		body["id"] = albumID
		json.NewEncoder(w).Encode(body)

	case path == "/albums/"+albumID && r.Method == http.MethodDelete:
		g.deleted = append(g.deleted, albumID)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "not found"}`))
	}
}

func setup(t *testing.T) (*fakeGallery, string, appFactory) {
	t.Helper()
	g := &fakeGallery{}
	srv := httptest.NewServer(g)
	t.Cleanup(srv.Close)

	cfg := adapter.DefaultConfig()
	cfg.Server.URL = srv.URL
	cfg.Client.RequestsPerSecond = 0

	return g, srv.URL, func() (*app, error) {
		return newApp(cfg, adapter.NullLogger())
	}
}

func execute(t *testing.T, build appFactory, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(build)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSearchJSON(t *testing.T) {
	_, base, build := setup(t)

	out, err := execute(t, build, "search", "photo", "--json")
	require.NoError(t, err)

	var rows []imageRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, img1, rows[0].ID)
	assert.Equal(t, "alice", rows[0].Creator)
	assert.Equal(t, "photo 550e", rows[0].Content)
	assert.Equal(t, base+"/traq/files/"+img1, rows[0].URL)
	assert.Equal(t, img2, rows[1].ID)
}

func TestSearchTable(t *testing.T) {
	_, _, build := setup(t)

	out, err := execute(t, build, "search", "photo")
	require.NoError(t, err)
	assert.Contains(t, out, img1)
	assert.Contains(t, out, "2 of 2 hits")
}

func TestAlbumCreate(t *testing.T) {
	g, _, build := setup(t)

	out, err := execute(t, build, "album", "create", "Trip", img1, img2, img1, "-d", "week away")
	require.NoError(t, err)
	assert.Contains(t, out, "Created album "+albumID)

	require.Len(t, g.created, 1)
	assert.Equal(t, "Trip", g.created[0]["title"])
	assert.Equal(t, "week away", g.created[0]["description"])
	assert.Equal(t, []interface{}{img1, img2}, g.created[0]["images"])
}

func TestAlbumCreateBlankTitle(t *testing.T) {
	g, _, build := setup(t)

	_, err := execute(t, build, "album", "create", "   ", img1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Empty(t, g.created)
}

func TestAlbumAddMerges(t *testing.T) {
	g, _, build := setup(t)

	out, err := execute(t, build, "album", "add", albumID, img2, img1)
	require.NoError(t, err)
	assert.Contains(t, out, "(2 images)")

	require.Len(t, g.updated, 1)
	assert.Equal(t, []interface{}{img1, img2}, g.updated[0]["images"])
	assert.Equal(t, "Summer", g.updated[0]["title"])
}

func TestAlbumListAndDelete(t *testing.T) {
	g, _, build := setup(t)

	out, err := execute(t, build, "album", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Summer")

	out, err = execute(t, build, "album", "delete", albumID)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted album")
	assert.Equal(t, []string{albumID}, g.deleted)
}

func TestAlbumShowMissing(t *testing.T) {
	_, _, build := setup(t)

	_, err := execute(t, build, "album", "show", img2)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVersion(t *testing.T) {
	out, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.Equal(t, "pixdeck dev\n", out)
}

func TestReadSecretFromPipe(t *testing.T) {
	token, err := readSecret(strings.NewReader("  abc123 \n"))
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	token, err = readSecret(strings.NewReader("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", token)
}

func TestSearchFooter(t *testing.T) {
	total := 40
	assert.Equal(t, "20 of 40 hits", searchFooter(20, &total, true))
	assert.Equal(t, "20 hits (more available)", searchFooter(20, nil, true))
	assert.Equal(t, "3 hits", searchFooter(3, nil, false))
}

func TestAlbumEdit(t *testing.T) {
	g, _, build := setup(t)

	out, err := execute(t, build, "album", "edit", albumID, "--title", "Winter")
	require.NoError(t, err)
	assert.Contains(t, out, `"Winter"`)

	require.Len(t, g.updated, 1)
	assert.Equal(t, "Winter", g.updated[0]["title"])
	assert.NotContains(t, g.updated[0], "images")
	assert.NotContains(t, g.updated[0], "description")

	_, err = execute(t, build, "album", "edit", albumID)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Len(t, g.updated, 1)
}
