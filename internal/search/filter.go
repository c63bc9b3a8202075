package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/pixdeck/internal/domain"
)

// FilterResult is a loaded image whose post content matched a local filter
type FilterResult struct {
	Detail         *domain.ImageDetail
	MatchedIndexes []int // Byte positions in the lowercased content (for highlighting)
	Score          int   // Higher is better
}

// detailIndex implements fuzzy.Source over post contents
type detailIndex struct {
	details []*domain.ImageDetail
	lower   []string
}

func (idx detailIndex) String(i int) string { return idx.lower[i] }

func (idx detailIndex) Len() int { return len(idx.details) }

// FilterLoaded fuzzy-matches query against the post content of already
// fetched details. It never touches the network; unfetched images simply
// cannot match. Results are ordered best first.
func FilterLoaded(query string, details []*domain.ImageDetail) []FilterResult {
	query = strings.TrimSpace(query)
	if query == "" || len(details) == 0 {
		return nil
	}

	idx := detailIndex{
		details: make([]*domain.ImageDetail, 0, len(details)),
		lower:   make([]string, 0, len(details)),
	}
	for _, d := range details {
		if d == nil {
			continue
		}
		idx.details = append(idx.details, d)
		idx.lower = append(idx.lower, strings.ToLower(d.Post.Content))
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), idx)
	results := make([]FilterResult, len(matches))
	for i, m := range matches {
		results[i] = FilterResult{
			Detail:         idx.details[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}
