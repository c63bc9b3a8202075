package album

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/pixdeck/internal/domain"
)

// FilterAlbums returns albums whose title fuzzy-matches query, best match first.
// An empty query returns albums unchanged.
func FilterAlbums(query string, albums []domain.AlbumItem) []domain.AlbumItem {
	query = strings.TrimSpace(query)
	if query == "" {
		return albums
	}

	titles := make([]string, len(albums))
	for i, a := range albums {
		titles[i] = a.Title
	}

	matches := fuzzy.RankFindFold(query, titles)

	// Sort by distance (lower is better), ties keep list order
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].OriginalIndex < matches[j].OriginalIndex
	})

	results := make([]domain.AlbumItem, 0, len(matches))
	for _, m := range matches {
		results = append(results, albums[m.OriginalIndex])
	}
	return results
}
