package domain

import "context"

// AlbumQueries: Synchronous, cache-only reads.
type AlbumQueries interface {
	CachedAlbums() ([]AlbumItem, bool)
	CachedAlbum(id string) (*Album, bool)
}

// AlbumCommands: Asynchronous operations (includes CRUD).
type AlbumCommands interface {
	// Force fetch
	FetchAlbums(ctx context.Context, filter AlbumFilter) ([]AlbumItem, error)
	FetchAlbum(ctx context.Context, id string) (*Album, error)

	// CRUD (each invalidates cache after success)
	CreateAlbum(ctx context.Context, req CreateAlbumRequest) (*Album, error)
	UpdateAlbum(ctx context.Context, id string, req UpdateAlbumRequest) (*Album, error)
	AddImages(ctx context.Context, id string, imageIDs []string) (*Album, error)
	DeleteAlbum(ctx context.Context, id string) error
}
