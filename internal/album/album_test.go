package album

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/pixdeck/internal/domain"
	"github.com/mmcdole/pixdeck/internal/selection"
)

// fakeClient records album writes and serves albums from memory
type fakeClient struct {
	mu        sync.Mutex
	albums    map[string]*domain.Album
	creates   []domain.CreateAlbumRequest
	updates   []domain.UpdateAlbumRequest
	deletes   []string
	createErr error
	updateErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{albums: make(map[string]*domain.Album)}
}

func (f *fakeClient) GetAlbums(ctx context.Context, filter domain.AlbumFilter) ([]domain.AlbumItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.AlbumItem
	for _, a := range f.albums {
		if filter.CreatorID != "" && a.Creator != filter.CreatorID {
			continue
		}
		out = append(out, a.Item())
	}
	return out, nil
}

func (f *fakeClient) GetAlbum(ctx context.Context, id string) (*domain.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.albums[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	cp.Images = append([]string(nil), a.Images...)
	return &cp, nil
}

func (f *fakeClient) CreateAlbum(ctx context.Context, req domain.CreateAlbumRequest) (*domain.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	a := &domain.Album{
		ID:          "album-" + req.Title,
		Title:       req.Title,
		Description: req.Description,
		Images:      append([]string(nil), req.Images...),
	}
	f.albums[a.ID] = a
	return a, nil
}

func (f *fakeClient) UpdateAlbum(ctx context.Context, id string, req domain.UpdateAlbumRequest) (*domain.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, req)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	a, ok := f.albums[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.Images != nil {
		a.Images = append([]string(nil), (*req.Images)...)
	}
	cp := *a
	return &cp, nil
}

func (f *fakeClient) DeleteAlbum(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	delete(f.albums, id)
	return nil
}

// memStore is a minimal domain.Store for service tests
type memStore struct {
	albums      []domain.AlbumItem
	hasAlbums   bool
	details     map[string]*domain.Album
	invalidated []string
}

func newMemStore() *memStore {
	return &memStore{details: make(map[string]*domain.Album)}
}

func (m *memStore) GetImageDetail(id string) (*domain.ImageDetail, bool) { return nil, false }
func (m *memStore) SaveImageDetail(*domain.ImageDetail) error            { return nil }
func (m *memStore) GetAlbums() ([]domain.AlbumItem, bool)                { return m.albums, m.hasAlbums }
func (m *memStore) SaveAlbums(albums []domain.AlbumItem) error {
	m.albums, m.hasAlbums = albums, true
	return nil
}
func (m *memStore) GetAlbum(id string) (*domain.Album, bool) {
	a, ok := m.details[id]
	return a, ok
}
func (m *memStore) SaveAlbum(a *domain.Album) error {
	m.details[a.ID] = a
	return nil
}
func (m *memStore) InvalidateAlbums() {
	m.albums, m.hasAlbums = nil, false
	m.invalidated = append(m.invalidated, "*")
}
func (m *memStore) InvalidateAlbum(id string) {
	delete(m.details, id)
	m.invalidated = append(m.invalidated, id)
}
func (m *memStore) InvalidateAll() {
	m.InvalidateAlbums()
	m.details = make(map[string]*domain.Album)
}
func (m *memStore) Close() error { return nil }

func TestMergeImageIDs(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		incoming []string
		want     []string
	}{
		{name: "appends new ids in order", existing: []string{"a", "b"}, incoming: []string{"b", "c", "a"}, want: []string{"a", "b", "c"}},
		{name: "empty existing", existing: nil, incoming: []string{"x", "y"}, want: []string{"x", "y"}},
		{name: "nothing new", existing: []string{"a"}, incoming: []string{"a"}, want: []string{"a"}},
		{name: "duplicates in incoming", existing: []string{"a"}, incoming: []string{"c", "c", "d"}, want: []string{"a", "c", "d"}},
		{name: "both empty", existing: nil, incoming: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeImageIDs(tt.existing, tt.incoming))
		})
	}
}

func TestCreateFromSelectionIssuesOneRequestAndClears(t *testing.T) {
	client := newFakeClient()
	svc := NewService(client, newMemStore(), nil)
	sel := selection.New()
	sel.Select("a")
	sel.Select("b")

	summary, err := NewComposer(svc, sel, nil).CreateFromSelection(context.Background(), "Trip", "summer")
	require.NoError(t, err)

	require.Len(t, client.creates, 1)
	assert.Equal(t, domain.CreateAlbumRequest{Title: "Trip", Description: "summer", Images: []string{"a", "b"}}, client.creates[0])
	assert.Equal(t, 0, sel.Count())
	assert.Equal(t, &domain.AlbumSummary{ID: "album-Trip", Title: "Trip", Description: "summer", ImageCount: 2}, summary)
}

func TestCreateFromSelectionFailureKeepsSelection(t *testing.T) {
	client := newFakeClient()
	client.createErr = &domain.ServerError{Status: 500, Code: "internal"}
	sel := selection.New()
	sel.Select("a")
	sel.Select("b")

	_, err := NewComposer(NewService(client, newMemStore(), nil), sel, nil).CreateFromSelection(context.Background(), "Trip", "")

	var serverErr *domain.ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Len(t, client.creates, 1)
	assert.Equal(t, []string{"a", "b"}, sel.IDs())
}

func TestCreateFromEmptySelection(t *testing.T) {
	client := newFakeClient()
	composer := NewComposer(NewService(client, newMemStore(), nil), selection.New(), nil)

	_, err := composer.CreateFromSelection(context.Background(), "Trip", "")
	assert.ErrorIs(t, err, domain.ErrEmptySelection)
	assert.Empty(t, client.creates)
}

func TestCreateFromSelectionRequiresTitle(t *testing.T) {
	client := newFakeClient()
	sel := selection.New()
	sel.Select("a")

	_, err := NewComposer(NewService(client, newMemStore(), nil), sel, nil).CreateFromSelection(context.Background(), "   ", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, client.creates)
	assert.Equal(t, 1, sel.Count())
}

func TestAddSelectionToAlbumMerges(t *testing.T) {
	client := newFakeClient()
	client.albums["x"] = &domain.Album{ID: "x", Title: "Old", Description: "d", Images: []string{"a", "b"}}
	store := newMemStore()
	store.details["x"] = client.albums["x"]
	sel := selection.New()
	for _, id := range []string{"b", "c", "a"} {
		sel.Select(id)
	}

	summary, err := NewComposer(NewService(client, store, nil), sel, nil).AddSelectionToAlbum(context.Background(), "x")
	require.NoError(t, err)

	require.Len(t, client.updates, 1)
	upd := client.updates[0]
	assert.Equal(t, "Old", *upd.Title)
	assert.Equal(t, "d", *upd.Description)
	assert.Equal(t, []string{"a", "b", "c"}, *upd.Images)
	assert.Equal(t, 3, summary.ImageCount)
	assert.Equal(t, 0, sel.Count())
	_, cached := store.GetAlbum("x")
	assert.False(t, cached, "album detail invalidated")
}

func TestAddSelectionToAlbumFailureKeepsSelection(t *testing.T) {
	client := newFakeClient()
	client.albums["x"] = &domain.Album{ID: "x", Images: []string{"a"}}
	client.updateErr = domain.ErrNetwork
	sel := selection.New()
	sel.Select("b")

	_, err := NewComposer(NewService(client, newMemStore(), nil), sel, nil).AddSelectionToAlbum(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, []string{"b"}, sel.IDs())
}

func TestAddImagesNothingNewSkipsUpdate(t *testing.T) {
	client := newFakeClient()
	client.albums["x"] = &domain.Album{ID: "x", Images: []string{"a", "b"}}

	album, err := NewService(client, newMemStore(), nil).AddImages(context.Background(), "x", []string{"b"})
	require.NoError(t, err)
	assert.Empty(t, client.updates)
	assert.Equal(t, []string{"a", "b"}, album.Images)
}

func TestFetchAlbumsCachesUnfilteredList(t *testing.T) {
	client := newFakeClient()
	client.albums["x"] = &domain.Album{ID: "x", Title: "One", Creator: "alice"}
	store := newMemStore()
	svc := NewService(client, store, nil)
	queries := NewQueries(store)

	_, err := svc.FetchAlbumsByCreator(context.Background(), "alice")
	require.NoError(t, err)
	_, ok := queries.CachedAlbums()
	assert.False(t, ok, "filtered listings are not cached")

	albums, err := svc.FetchAlbums(context.Background(), domain.AlbumFilter{})
	require.NoError(t, err)
	cached, ok := queries.CachedAlbums()
	require.True(t, ok)
	assert.Equal(t, albums, cached)
}

func TestWritesInvalidateCache(t *testing.T) {
	client := newFakeClient()
	store := newMemStore()
	svc := NewService(client, store, nil)

	created, err := svc.CreateAlbum(context.Background(), domain.CreateAlbumRequest{Title: "T"})
	require.NoError(t, err)
	_, ok := NewQueries(store).CachedAlbum(created.ID)
	assert.True(t, ok, "created album is cached")

	require.NoError(t, store.SaveAlbums([]domain.AlbumItem{created.Item()}))
	require.NoError(t, svc.DeleteAlbum(context.Background(), created.ID))

	_, ok = store.GetAlbums()
	assert.False(t, ok)
	_, ok = store.GetAlbum(created.ID)
	assert.False(t, ok)
	assert.Equal(t, []string{created.ID}, client.deletes)
}

func TestFilterAlbums(t *testing.T) {
	albums := []domain.AlbumItem{
		{ID: "1", Title: "Summer trip"},
		{ID: "2", Title: "Work"},
		{ID: "3", Title: "Trip to Kyoto"},
	}

	got := FilterAlbums("trip", albums)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)

	assert.Equal(t, albums, FilterAlbums("", albums))
	assert.Empty(t, FilterAlbums("zzz", albums))
}
