// Package search holds the incremental image-search pager and local
// filtering over loaded results.
//
// The pager turns a possibly filtered search into a growable, offset-ordered
// result list. In album-chance (sparse) mode the server filters after
// paginating, so a logical page may take several physical requests.
package search

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/pixdeck/internal/domain"
)

const (
	DefaultPageSize        = 20
	DefaultMaxScanAttempts = 10
)

// Options tunes the pager
type Options struct {
	PageSize        int // Items requested per physical fetch
	MaxScanAttempts int // Physical requests allowed per sparse acquisition
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.MaxScanAttempts <= 0 {
		o.MaxScanAttempts = DefaultMaxScanAttempts
	}
	return o
}

// State is a snapshot of the pager for one (query, filter mode) pair
type State struct {
	Query        string // "" = unfiltered
	FilterMode   bool   // Album-chance scanning
	Items        []domain.ImageRef
	CursorOffset int  // Next dense offset / end of last consumed sparse window
	ScanOffset   int  // Next unexplored sparse offset, always >= CursorOffset
	TotalHits    *int // Advisory upper bound, never used to truncate Items
	HasMore      bool
	Loading      bool // First-page acquisition in flight
	LoadingMore  bool // Next-page acquisition in flight
	LastError    error
}

func (s State) clone() State {
	out := s
	out.Items = append([]domain.ImageRef(nil), s.Items...)
	if s.TotalHits != nil {
		total := *s.TotalHits
		out.TotalHits = &total
	}
	return out
}

// Pager owns the paginated result list for the current query.
// The mutex is never held across a request; each acquisition captures the
// generation at issue time and commits only if no Search replaced the state.
type Pager struct {
	source domain.SearchSource
	opts   Options
	logger *slog.Logger

	mu    sync.Mutex
	gen   uint64
	state State
	seen  map[string]struct{}
}

// NewPager creates a pager reading from source
func NewPager(source domain.SearchSource, opts Options, logger *slog.Logger) *Pager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pager{
		source: source,
		opts:   opts.withDefaults(),
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// PageSize returns the configured page size
func (p *Pager) PageSize() int {
	return p.opts.PageSize
}

// State returns a copy of the current state
func (p *Pager) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.clone()
}

// Items returns a copy of the accumulated results
func (p *Pager) Items() []domain.ImageRef {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ImageRef(nil), p.state.Items...)
}

// Reset discards all state. Pending acquisitions will be dropped.
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.state = State{}
	p.seen = make(map[string]struct{})
}

// Search replaces the state for (query, filterMode) and acquires the first page.
// Failures are recorded in State.LastError rather than returned.
func (p *Pager) Search(ctx context.Context, query string, filterMode bool) {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.state = State{
		Query:      query,
		FilterMode: filterMode,
		HasMore:    true,
		Loading:    true,
	}
	p.seen = make(map[string]struct{})
	cur := p.cursor()
	p.mu.Unlock()

	p.logger.Debug("search started", "query", query, "filterMode", filterMode, "gen", gen)

	res, err := p.acquire(ctx, cur)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		p.logger.Debug("discarding stale search result", "query", query, "gen", gen)
		return
	}
	p.state.Loading = false
	p.commit(res, err)
}

// LoadMore acquires the next logical page. It is a no-op when nothing more
// is obtainable or an acquisition is already in flight.
func (p *Pager) LoadMore(ctx context.Context) {
	p.mu.Lock()
	if !p.state.HasMore || p.state.LoadingMore || p.state.Loading {
		p.mu.Unlock()
		return
	}
	p.state.LoadingMore = true
	gen := p.gen
	cur := p.cursor()
	p.mu.Unlock()

	res, err := p.acquire(ctx, cur)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		p.logger.Debug("discarding stale page", "query", cur.query, "gen", gen)
		return
	}
	p.state.LoadingMore = false
	p.commit(res, err)
}

// cursor captures what an acquisition needs. Caller holds mu.
type cursor struct {
	query      string
	filterMode bool
	offset     int
	scanOffset int
	totalHits  *int
}

func (p *Pager) cursor() cursor {
	c := cursor{
		query:      p.state.Query,
		filterMode: p.state.FilterMode,
		offset:     p.state.CursorOffset,
		scanOffset: p.state.ScanOffset,
	}
	if p.state.TotalHits != nil {
		total := *p.state.TotalHits
		c.totalHits = &total
	}
	return c
}

// acquisition is the outcome of one logical page fetch, applied by commit
type acquisition struct {
	items      []domain.ImageRef
	offset     int
	scanOffset int
	totalHits  *int
	hasMore    bool
}

func (p *Pager) acquire(ctx context.Context, c cursor) (acquisition, error) {
	if c.filterMode {
		return p.acquireSparse(ctx, c)
	}
	return p.acquireDense(ctx, c)
}

func (p *Pager) acquireDense(ctx context.Context, c cursor) (acquisition, error) {
	page, err := p.fetch(ctx, c.query, c.offset, false)
	if err != nil {
		return acquisition{}, err
	}

	total := c.totalHits
	if page.TotalHits != nil {
		total = page.TotalHits
	}

	count := len(page.Items)
	offset := c.offset + count
	return acquisition{
		items:      page.Items,
		offset:     offset,
		scanOffset: offset,
		totalHits:  total,
		hasMore:    p.moreAfter(count, offset, total),
	}, nil
}

func (p *Pager) acquireSparse(ctx context.Context, c cursor) (acquisition, error) {
	size := p.opts.PageSize
	scan := c.scanOffset
	if scan < c.offset {
		scan = c.offset
	}
	total := c.totalHits

	for attempt := 0; attempt < p.opts.MaxScanAttempts; attempt++ {
		if total != nil && scan >= *total {
			break
		}

		page, err := p.fetch(ctx, c.query, scan, true)
		if err != nil {
			return acquisition{}, err
		}
		if page.TotalHits != nil {
			total = page.TotalHits
		}

		count := len(page.Items)
		if count > 0 {
			offset := scan + count
			return acquisition{
				items:      page.Items,
				offset:     offset,
				scanOffset: offset + size,
				totalHits:  total,
				hasMore:    p.moreAfter(count, offset, total),
			}, nil
		}

		p.logger.Debug("empty window, scanning ahead", "query", c.query, "offset", scan, "attempt", attempt+1)
		scan += size
	}

	p.logger.Debug("scan exhausted", "query", c.query, "scanOffset", scan, "maxAttempts", p.opts.MaxScanAttempts)
	return acquisition{
		offset:     c.offset,
		scanOffset: scan,
		totalHits:  total,
		hasMore:    false,
	}, nil
}

// moreAfter is the dense-mode continuation rule
func (p *Pager) moreAfter(count, offset int, total *int) bool {
	return count == p.opts.PageSize && (total == nil || offset < *total)
}

func (p *Pager) fetch(ctx context.Context, query string, offset int, albumChance bool) (*domain.SearchPage, error) {
	p.logger.Debug("fetching page", "query", query, "offset", offset, "limit", p.opts.PageSize, "albumChance", albumChance)
	page, err := p.source.SearchImages(ctx, domain.ImageQuery{
		Word:        query,
		Limit:       p.opts.PageSize,
		Offset:      offset,
		AlbumChance: albumChance,
	})
	if err != nil {
		return nil, err
	}
	if page == nil {
		page = &domain.SearchPage{}
	}
	return page, nil
}

// commit applies an acquisition. Caller holds mu and has checked the generation.
func (p *Pager) commit(res acquisition, err error) {
	if err != nil {
		p.logger.Error("failed to fetch images", "error", err, "query", p.state.Query, "offset", p.state.CursorOffset)
		p.state.LastError = err
		return
	}

	p.state.LastError = nil
	for _, ref := range res.items {
		if _, dup := p.seen[ref.ID]; dup {
			continue
		}
		p.seen[ref.ID] = struct{}{}
		p.state.Items = append(p.state.Items, ref)
	}
	p.state.CursorOffset = res.offset
	p.state.ScanOffset = res.scanOffset
	p.state.TotalHits = res.totalHits
	p.state.HasMore = res.hasMore

	if !res.hasMore {
		p.logger.Debug("results exhausted", "query", p.state.Query, "count", len(p.state.Items))
	}
}
