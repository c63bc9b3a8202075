package tui

import (
	"github.com/mmcdole/pixdeck/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// PageLoadedMsg signals that a Search or LoadMore finished.
// The pager holds the result; the model re-reads its state.
type PageLoadedMsg struct {
	Query string
}

// DetailLoadedMsg signals that an image detail is cached
type DetailLoadedMsg struct {
	ID string
}

// PrefetchDoneMsg signals that details for a page have been warmed
type PrefetchDoneMsg struct{}

// AlbumsLoadedMsg carries albums for the picker
type AlbumsLoadedMsg struct {
	Albums []domain.AlbumItem
}

// AlbumComposedMsg signals that the selection went into an album
type AlbumComposedMsg struct {
	Summary *domain.AlbumSummary
	Created bool // false when appended to an existing album
}

// ViewerOpenedMsg signals that an image was handed to the viewer
type ViewerOpenedMsg struct {
	ID string
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
