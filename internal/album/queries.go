package album

import "github.com/mmcdole/pixdeck/internal/domain"

// Queries provides synchronous, cache-only reads.
// Implements domain.AlbumQueries.
type Queries struct {
	store domain.Store
}

// NewQueries creates a new Queries instance.
func NewQueries(store domain.Store) *Queries {
	return &Queries{store: store}
}

func (q *Queries) CachedAlbums() ([]domain.AlbumItem, bool) {
	return q.store.GetAlbums()
}

func (q *Queries) CachedAlbum(id string) (*domain.Album, bool) {
	return q.store.GetAlbum(id)
}
