package gallery

import (
	"time"

	"github.com/mmcdole/pixdeck/internal/domain"
)

// SearchImagesResponse is the body of /traq/messages/search/images.
// totalHits counts matching messages, not images.
type SearchImagesResponse struct {
	TotalHits *int     `json:"totalHits"`
	Hits      []string `json:"hits"`
}

// ErrorEnvelope is the error body returned by the gallery server
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type PostDTO struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type ImageDTO struct {
	ID      string  `json:"id"`
	Creator string  `json:"creator"`
	Post    PostDTO `json:"post"`
}

type AlbumItemDTO struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Creator string `json:"creator"`
}

type AlbumDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Creator     string    `json:"creator"`
	Images      []string  `json:"images"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MapSearchPage converts a search response. Hits are kept in server order.
func MapSearchPage(resp SearchImagesResponse) *domain.SearchPage {
	items := make([]domain.ImageRef, 0, len(resp.Hits))
	for _, id := range resp.Hits {
		items = append(items, domain.ImageRef{ID: id})
	}
	return &domain.SearchPage{Items: items, TotalHits: resp.TotalHits}
}

func MapImage(dto ImageDTO) *domain.ImageDetail {
	return &domain.ImageDetail{
		ID:      dto.ID,
		Creator: dto.Creator,
		Post:    domain.Post{ID: dto.Post.ID, Content: dto.Post.Content},
	}
}

func MapAlbumItems(dtos []AlbumItemDTO) []domain.AlbumItem {
	items := make([]domain.AlbumItem, 0, len(dtos))
	for _, d := range dtos {
		items = append(items, domain.AlbumItem{ID: d.ID, Title: d.Title, Creator: d.Creator})
	}
	return items
}

func MapAlbum(dto AlbumDTO) *domain.Album {
	images := dto.Images
	if images == nil {
		images = []string{}
	}
	return &domain.Album{
		ID:          dto.ID,
		Title:       dto.Title,
		Description: dto.Description,
		Creator:     dto.Creator,
		Images:      images,
		CreatedAt:   dto.CreatedAt,
		UpdatedAt:   dto.UpdatedAt,
	}
}
