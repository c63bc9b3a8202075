package domain

import (
	"fmt"
	"time"
)

// ImageRef is the minimal identity of a search hit. Details are fetched lazily.
type ImageRef struct {
	ID string `json:"id"`
}

// Post is the chat message an image was attached to
type Post struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// ImageDetail is the full record for an image, owned by the detail cache
type ImageDetail struct {
	ID      string `json:"id"`
	Creator string `json:"creator"`
	Post    Post   `json:"post"`
}

// Excerpt returns the first line of the post content, truncated to max runes
func (d ImageDetail) Excerpt(max int) string {
	content := d.Post.Content
	for i, r := range content {
		if r == '\n' {
			content = content[:i]
			break
		}
	}
	runes := []rune(content)
	if max > 0 && len(runes) > max {
		return string(runes[:max-1]) + "…"
	}
	return content
}

// ImageQuery holds the parameters of one physical search request
type ImageQuery struct {
	Word        string // Search term ("" = unfiltered)
	Limit       int    // Page size
	Offset      int    // Zero-based offset
	AlbumChance bool   // Server-side post-filtering; pages may come back empty
}

// SearchPage is the result of one physical search request.
// TotalHits, when set, bounds the number of matches across the whole offset space.
type SearchPage struct {
	Items     []ImageRef
	TotalHits *int
}

// Album is a user-composed collection of images
type Album struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Creator     string    `json:"creator"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Item returns the list representation of the album
func (a Album) Item() AlbumItem {
	return AlbumItem{ID: a.ID, Title: a.Title, Creator: a.Creator}
}

// AlbumItem is the abbreviated album returned by list endpoints
type AlbumItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Creator string `json:"creator"`
}

// AlbumFilter narrows album listings. Zero values are omitted from the request.
type AlbumFilter struct {
	CreatorID string
	Before    *time.Time // created_at upper bound
	After     *time.Time // created_at lower bound
	Limit     int        // 1-100, server default 20
	Offset    int
}

// CreateAlbumRequest is the payload for album creation
type CreateAlbumRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// UpdateAlbumRequest is a partial update; nil fields are left untouched
type UpdateAlbumRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Images      *[]string `json:"images,omitempty"`
}

// AlbumSummary describes an album created from a selection
type AlbumSummary struct {
	ID          string
	Title       string
	Description string
	ImageCount  int
}

// String renders the summary for status lines
func (s AlbumSummary) String() string {
	if s.ImageCount == 1 {
		return fmt.Sprintf("%q (1 image)", s.Title)
	}
	return fmt.Sprintf("%q (%d images)", s.Title, s.ImageCount)
}
