package domain

import (
	"context"
)

// ImageClient provides network access to image search and details
type ImageClient interface {
	// SearchImages returns one page of image ids. Pages may hold 0..Limit items.
	SearchImages(ctx context.Context, q ImageQuery) (*SearchPage, error)

	// GetImageDetail returns the full record for an image (ErrNotFound on miss)
	GetImageDetail(ctx context.Context, id string) (*ImageDetail, error)
}

// AlbumClient provides network access to album CRUD
type AlbumClient interface {
	GetAlbums(ctx context.Context, filter AlbumFilter) ([]AlbumItem, error)
	GetAlbum(ctx context.Context, id string) (*Album, error)
	CreateAlbum(ctx context.Context, req CreateAlbumRequest) (*Album, error)
	UpdateAlbum(ctx context.Context, id string, req UpdateAlbumRequest) (*Album, error)
	DeleteAlbum(ctx context.Context, id string) error
}

// GalleryClient combines everything a gallery backend must implement
type GalleryClient interface {
	ImageClient
	AlbumClient
}
