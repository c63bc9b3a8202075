package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/pixdeck/internal/adapter"
	"github.com/mmcdole/pixdeck/internal/album"
	"github.com/mmcdole/pixdeck/internal/domain"
	"github.com/mmcdole/pixdeck/internal/image"
	"github.com/mmcdole/pixdeck/internal/search"
)

// Command factories for async operations

// SearchCmd acquires the first page for query. Sparse scans may issue
// several requests, so the timeout is generous.
func SearchCmd(pager *search.Pager, query string, albumChance bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		pager.Search(ctx, query, albumChance)
		return PageLoadedMsg{Query: query}
	}
}

// LoadMoreCmd acquires the next logical page
func LoadMoreCmd(pager *search.Pager, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		pager.LoadMore(ctx)
		return PageLoadedMsg{Query: query}
	}
}

// LoadDetailCmd fetches one image detail into the cache
func LoadDetailCmd(svc *image.Service, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := svc.Detail(ctx, id); err != nil {
			return ErrMsg{Err: err, Context: "loading image"}
		}
		return DetailLoadedMsg{ID: id}
	}
}

// PrefetchCmd warms the detail cache for ids. Individual failures are
// logged by the service and do not surface here.
func PrefetchCmd(svc *image.Service, ids []string) tea.Cmd {
	if len(ids) == 0 {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		_ = svc.Prefetch(ctx, ids)
		return PrefetchDoneMsg{}
	}
}

// LoadAlbumsCmd loads the album list for the picker
func LoadAlbumsCmd(svc *album.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		albums, err := svc.FetchAlbums(ctx, domain.AlbumFilter{})
		if err != nil {
			return ErrMsg{Err: err, Context: ctxLoadAlbums}
		}
		return AlbumsLoadedMsg{Albums: albums}
	}
}

// ErrMsg contexts for the album commands
const (
	ctxLoadAlbums  = "loading albums"
	ctxCreateAlbum = "creating album"
	ctxAddToAlbum  = "adding to album"
)

// CreateAlbumCmd creates an album from the current selection
func CreateAlbumCmd(composer *album.Composer, title, description string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		summary, err := composer.CreateFromSelection(ctx, title, description)
		if err != nil {
			return ErrMsg{Err: err, Context: ctxCreateAlbum}
		}
		return AlbumComposedMsg{Summary: summary, Created: true}
	}
}

// AddToAlbumCmd appends the current selection to an existing album
func AddToAlbumCmd(composer *album.Composer, albumID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		summary, err := composer.AddSelectionToAlbum(ctx, albumID)
		if err != nil {
			return ErrMsg{Err: err, Context: ctxAddToAlbum}
		}
		return AlbumComposedMsg{Summary: summary}
	}
}

// OpenCmd hands an image URL to the external viewer
func OpenCmd(viewer *adapter.Viewer, id, url string) tea.Cmd {
	return func() tea.Msg {
		if err := viewer.Open(url); err != nil {
			return ErrMsg{Err: err, Context: "opening image"}
		}
		return ViewerOpenedMsg{ID: id}
	}
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
