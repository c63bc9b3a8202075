package domain

// Store handles the session cache (BoltDB + memory).
// UI code reads directly from Store for cache access.
type Store interface {
	// === Image details (memoized, never invalidated) ===
	GetImageDetail(id string) (*ImageDetail, bool)
	SaveImageDetail(detail *ImageDetail) error

	// === Albums ===
	GetAlbums() ([]AlbumItem, bool)
	SaveAlbums(albums []AlbumItem) error

	GetAlbum(id string) (*Album, bool)
	SaveAlbum(album *Album) error

	// === Invalidation ===
	InvalidateAlbums()
	InvalidateAlbum(id string)
	InvalidateAll()

	Close() error
}
