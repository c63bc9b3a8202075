// Package image serves image details with a per-session memo in front of
// the gallery client.
package image

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mmcdole/pixdeck/internal/domain"
)

// DefaultPrefetchConcurrency bounds parallel detail requests in Prefetch
const DefaultPrefetchConcurrency = 4

// Service resolves image details. Details never change once fetched, so
// cached entries are never invalidated.
type Service struct {
	client domain.ImageClient
	store  domain.Store
	logger *slog.Logger

	group       singleflight.Group
	concurrency int
}

// NewService creates a new image detail service.
func NewService(client domain.ImageClient, store domain.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:      client,
		store:       store,
		logger:      logger,
		concurrency: DefaultPrefetchConcurrency,
	}
}

// Cached returns a detail without touching the network
func (s *Service) Cached(id string) (*domain.ImageDetail, bool) {
	return s.store.GetImageDetail(id)
}

// Detail returns the detail for id, fetching it on a cache miss.
// Concurrent misses for one id share a single request.
func (s *Service) Detail(ctx context.Context, id string) (*domain.ImageDetail, error) {
	if detail, ok := s.store.GetImageDetail(id); ok {
		return detail, nil
	}

	v, err, shared := s.group.Do(id, func() (interface{}, error) {
		detail, err := s.client.GetImageDetail(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.store.SaveImageDetail(detail); err != nil {
			s.logger.Error("failed to save image detail", "error", err, "imageID", id)
		}
		return detail, nil
	})
	if err != nil {
		s.logger.Error("failed to fetch image detail", "error", err, "imageID", id)
		return nil, err
	}
	s.logger.Debug("fetched image detail", "imageID", id, "shared", shared)
	return v.(*domain.ImageDetail), nil
}

// Prefetch warms the cache for ids. Individual failures are logged and
// skipped; only context cancellation is returned.
func (s *Service) Prefetch(ctx context.Context, ids []string) error {
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, id := range ids {
		if _, ok := s.store.GetImageDetail(id); ok {
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if _, err := s.Detail(ctx, id); err != nil {
				s.logger.Debug("prefetch skipped image", "imageID", id, "error", err)
			}
			return nil
		})
	}

	_ = g.Wait()
	return ctx.Err()
}
