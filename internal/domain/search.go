package domain

import "context"

// SearchSource provides paged image search. Satisfied by ImageClient.
type SearchSource interface {
	SearchImages(ctx context.Context, q ImageQuery) (*SearchPage, error)
}
