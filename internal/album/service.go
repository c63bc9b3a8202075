package album

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/pixdeck/internal/domain"
)

// Service orchestrates album client + store + CRUD operations.
// Implements domain.AlbumCommands.
type Service struct {
	client domain.AlbumClient
	store  domain.Store
	logger *slog.Logger
}

// NewService creates a new album service.
func NewService(client domain.AlbumClient, store domain.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, store: store, logger: logger}
}

// FetchAlbums lists albums matching filter. Only the unfiltered first page is cached.
func (s *Service) FetchAlbums(ctx context.Context, filter domain.AlbumFilter) ([]domain.AlbumItem, error) {
	albums, err := s.client.GetAlbums(ctx, filter)
	if err != nil {
		s.logger.Error("failed to fetch albums", "error", err)
		return nil, err
	}
	if filter == (domain.AlbumFilter{}) {
		if err := s.store.SaveAlbums(albums); err != nil {
			s.logger.Error("failed to save albums", "error", err)
		}
	}
	s.logger.Debug("fetched albums", "count", len(albums), "creator", filter.CreatorID)
	return albums, nil
}

func (s *Service) FetchAlbumsByCreator(ctx context.Context, creatorID string) ([]domain.AlbumItem, error) {
	return s.FetchAlbums(ctx, domain.AlbumFilter{CreatorID: creatorID})
}

func (s *Service) FetchAlbum(ctx context.Context, id string) (*domain.Album, error) {
	album, err := s.client.GetAlbum(ctx, id)
	if err != nil {
		s.logger.Error("failed to fetch album", "error", err, "albumID", id)
		return nil, err
	}
	if err := s.store.SaveAlbum(album); err != nil {
		s.logger.Error("failed to save album", "error", err, "albumID", id)
	}
	s.logger.Debug("fetched album", "albumID", id, "images", len(album.Images))
	return album, nil
}

func (s *Service) CreateAlbum(ctx context.Context, req domain.CreateAlbumRequest) (*domain.Album, error) {
	album, err := s.client.CreateAlbum(ctx, req)
	if err != nil {
		s.logger.Error("failed to create album", "error", err, "title", req.Title)
		return nil, err
	}
	s.store.InvalidateAlbums()
	if err := s.store.SaveAlbum(album); err != nil {
		s.logger.Error("failed to save album", "error", err, "albumID", album.ID)
	}
	s.logger.Info("created album", "title", req.Title, "id", album.ID, "images", len(req.Images))
	return album, nil
}

func (s *Service) UpdateAlbum(ctx context.Context, id string, req domain.UpdateAlbumRequest) (*domain.Album, error) {
	album, err := s.client.UpdateAlbum(ctx, id, req)
	if err != nil {
		s.logger.Error("failed to update album", "error", err, "albumID", id)
		return nil, err
	}
	s.invalidate(id)
	s.logger.Info("updated album", "albumID", id)
	return album, nil
}

// AddImages appends imageIDs to the album, skipping ids it already holds.
// The full album is sent back because the update replaces the image list.
func (s *Service) AddImages(ctx context.Context, id string, imageIDs []string) (*domain.Album, error) {
	current, err := s.client.GetAlbum(ctx, id)
	if err != nil {
		s.logger.Error("failed to fetch album for append", "error", err, "albumID", id)
		return nil, err
	}

	merged := MergeImageIDs(current.Images, imageIDs)
	added := len(merged) - len(current.Images)
	if added == 0 {
		s.logger.Debug("no new images to add", "albumID", id)
		return current, nil
	}

	album, err := s.UpdateAlbum(ctx, id, domain.UpdateAlbumRequest{
		Title:       &current.Title,
		Description: &current.Description,
		Images:      &merged,
	})
	if err != nil {
		return nil, fmt.Errorf("add images to album %s: %w", id, err)
	}
	s.logger.Info("added images to album", "albumID", id, "count", added)
	return album, nil
}

func (s *Service) DeleteAlbum(ctx context.Context, id string) error {
	if err := s.client.DeleteAlbum(ctx, id); err != nil {
		s.logger.Error("failed to delete album", "error", err, "albumID", id)
		return err
	}
	s.invalidate(id)
	s.logger.Info("deleted album", "albumID", id)
	return nil
}

func (s *Service) invalidate(id string) {
	s.store.InvalidateAlbums()
	s.store.InvalidateAlbum(id)
}

// MergeImageIDs returns existing followed by the ids of incoming it lacks.
// Each id appears at most once; existing order is preserved.
func MergeImageIDs(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, list := range [][]string{existing, incoming} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
