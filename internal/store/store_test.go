package store

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/pixdeck/internal/domain"
)

func openStores(t *testing.T) map[string]*GalleryStore {
	t.Helper()
	mem, err := NewGalleryStore("", "")
	require.NoError(t, err)
	disk, err := NewGalleryStore(t.TempDir(), "https://gallery.example.com")
	require.NoError(t, err)
	t.Cleanup(func() {
		mem.Close()
		disk.Close()
	})
	return map[string]*GalleryStore{"memory": mem, "bolt": disk}
}

func TestImageDetailRoundTrip(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok := s.GetImageDetail("img-1")
			assert.False(t, ok)

			want := &domain.ImageDetail{ID: "img-1", Creator: "alice", Post: domain.Post{ID: "p1", Content: "hello"}}
			require.NoError(t, s.SaveImageDetail(want))

			got, ok := s.GetImageDetail("img-1")
			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}
}

func TestSaveRejectsMissingID(t *testing.T) {
	s, err := NewGalleryStore("", "")
	require.NoError(t, err)

	assert.ErrorIs(t, s.SaveImageDetail(&domain.ImageDetail{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, s.SaveAlbum(nil), domain.ErrInvalidInput)
}

func TestAlbumInvalidation(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			album := &domain.Album{ID: "a1", Title: "Trip", Images: []string{"x", "y"}, CreatedAt: created, UpdatedAt: created}
			require.NoError(t, s.SaveAlbum(album))
			require.NoError(t, s.SaveAlbums([]domain.AlbumItem{album.Item()}))

			got, ok := s.GetAlbum("a1")
			require.True(t, ok)
			assert.Equal(t, album.Images, got.Images)
			assert.True(t, created.Equal(got.CreatedAt))

			s.InvalidateAlbums()
			_, ok = s.GetAlbums()
			assert.False(t, ok)
			_, ok = s.GetAlbum("a1")
			assert.True(t, ok, "detail survives list invalidation")

			s.InvalidateAlbum("a1")
			_, ok = s.GetAlbum("a1")
			assert.False(t, ok)
		})
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewGalleryStore(dir, "https://gallery.example.com")
	require.NoError(t, err)
	require.NoError(t, s.SaveImageDetail(&domain.ImageDetail{ID: "img-1"}))
	require.NoError(t, s.Close())

	reopened, err := NewGalleryStore(dir, "https://gallery.example.com/")
	require.NoError(t, err)
	defer reopened.Close()

	_, ok := reopened.GetImageDetail("img-1")
	assert.True(t, ok, "trailing slash maps to the same namespace")
}

func TestInvalidateAll(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.SaveImageDetail(&domain.ImageDetail{ID: "i1"}))
			require.NoError(t, s.SaveImageDetail(&domain.ImageDetail{ID: "i2"}))
			require.NoError(t, s.SaveAlbum(&domain.Album{ID: "a1"}))

			s.InvalidateAll()

			_, ok := s.GetImageDetail("i1")
			assert.False(t, ok)
			_, ok = s.GetImageDetail("i2")
			assert.False(t, ok)
			_, ok = s.GetAlbum("a1")
			assert.False(t, ok)

			require.NoError(t, s.SaveImageDetail(&domain.ImageDetail{ID: "i3"}))
			_, ok = s.GetImageDetail("i3")
			assert.True(t, ok, "usable after invalidation")
		})
	}
}

func TestSessionStoreRemovesDirOnClose(t *testing.T) {
	s, err := NewSessionStore()
	require.NoError(t, err)
	dir := s.tempDir
	require.DirExists(t, dir)

	require.NoError(t, s.SaveImageDetail(&domain.ImageDetail{ID: "i1"}))
	require.NoError(t, s.Close())

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
