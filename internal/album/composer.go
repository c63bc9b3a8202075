package album

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/pixdeck/internal/domain"
	"github.com/mmcdole/pixdeck/internal/selection"
)

// Composer turns the current selection into album writes.
// The selection is cleared only after the server accepted the write.
type Composer struct {
	albums    domain.AlbumCommands
	selection *selection.Set
	logger    *slog.Logger
}

// NewComposer creates a composer writing through albums
func NewComposer(albums domain.AlbumCommands, sel *selection.Set, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{albums: albums, selection: sel, logger: logger}
}

// CreateFromSelection creates a new album holding the selected images in
// selection order.
func (c *Composer) CreateFromSelection(ctx context.Context, title, description string) (*domain.AlbumSummary, error) {
	ids := c.selection.IDs()
	if len(ids) == 0 {
		return nil, domain.ErrEmptySelection
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("album title is required: %w", domain.ErrInvalidInput)
	}

	album, err := c.albums.CreateAlbum(ctx, domain.CreateAlbumRequest{
		Title:       title,
		Description: description,
		Images:      ids,
	})
	if err != nil {
		return nil, err
	}

	c.selection.Clear()
	summary := &domain.AlbumSummary{
		ID:          album.ID,
		Title:       album.Title,
		Description: album.Description,
		ImageCount:  len(ids),
	}
	c.logger.Info("album composed from selection", "albumID", album.ID, "images", len(ids))
	return summary, nil
}

// AddSelectionToAlbum appends the selected images to an existing album
func (c *Composer) AddSelectionToAlbum(ctx context.Context, albumID string) (*domain.AlbumSummary, error) {
	ids := c.selection.IDs()
	if len(ids) == 0 {
		return nil, domain.ErrEmptySelection
	}

	album, err := c.albums.AddImages(ctx, albumID, ids)
	if err != nil {
		return nil, err
	}

	c.selection.Clear()
	return &domain.AlbumSummary{
		ID:          album.ID,
		Title:       album.Title,
		Description: album.Description,
		ImageCount:  len(album.Images),
	}, nil
}
