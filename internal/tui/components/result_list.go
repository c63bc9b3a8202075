package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/pixdeck/internal/domain"
	"github.com/mmcdole/pixdeck/internal/search"
	"github.com/mmcdole/pixdeck/internal/tui/styles"
)

// Layout constants for the result list
const (
	// Border adds 1 char on each side
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// DetailLookup returns a cached image detail without fetching
type DetailLookup func(id string) (*domain.ImageDetail, bool)

// SelectedLookup reports whether an image is in the selection
type SelectedLookup func(id string) bool

// ResultList is a scrollable list of search hits with selection marks
// and a local fuzzy filter over already loaded details.
type ResultList struct {
	items []domain.ImageRef

	detail   DetailLookup
	selected SelectedLookup

	// Cursor
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width  int
	height int

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into items
}

// NewResultList creates an empty list
func NewResultList(detail DetailLookup, selected SelectedLookup) *ResultList {
	ti := textinput.New()
	ti.Placeholder = "filter loaded posts..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle

	if detail == nil {
		detail = func(string) (*domain.ImageDetail, bool) { return nil, false }
	}
	if selected == nil {
		selected = func(string) bool { return false }
	}
	return &ResultList{detail: detail, selected: selected, filterInput: ti}
}

// SetItems replaces the list contents. The cursor is kept when possible so
// appended pages do not move it.
func (l *ResultList) SetItems(items []domain.ImageRef) {
	l.items = items
	if l.filterActive {
		l.applyFilter()
	}
	l.clampCursor()
}

// Reset clears items, filter and cursor (new query)
func (l *ResultList) Reset() {
	l.items = nil
	l.cursor = 0
	l.offset = 0
	l.clearFilter()
}

func (l *ResultList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
	l.ensureVisible()
}

// Len returns the number of visible rows
func (l *ResultList) Len() int {
	if l.filteredIdx != nil {
		return len(l.filteredIdx)
	}
	return len(l.items)
}

func (l *ResultList) Cursor() int {
	return l.cursor
}

// Selected returns the item under the cursor
func (l *ResultList) Selected() (domain.ImageRef, bool) {
	if l.Len() == 0 {
		return domain.ImageRef{}, false
	}
	return l.items[l.mapIndex(l.cursor)], true
}

// NearEnd reports whether the cursor is within threshold rows of the end
// of the unfiltered list.
func (l *ResultList) NearEnd(threshold int) bool {
	if l.filterActive {
		return false
	}
	return len(l.items) == 0 || l.cursor >= len(l.items)-1-threshold
}

// VisibleIDs returns the ids currently on screen
func (l *ResultList) VisibleIDs() []string {
	end := l.offset + l.maxVisible
	if end > l.Len() {
		end = l.Len()
	}
	var ids []string
	for i := l.offset; i < end; i++ {
		ids = append(ids, l.items[l.mapIndex(i)].ID)
	}
	return ids
}

// Update handles navigation and filter typing
func (l *ResultList) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	if l.IsFilterTyping() {
		switch keyMsg.String() {
		case "esc":
			l.clearFilter()
			return nil
		case "enter":
			// Accept filter, blur input to allow navigation
			l.filterInput.Blur()
			return nil
		case "backspace":
			if l.filterInput.Value() == "" {
				l.clearFilter()
				return nil
			}
		}
		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.applyFilter()
		return cmd
	}

	count := l.Len()
	if count == 0 {
		return nil
	}

	switch keyMsg.String() {
	case "j", "down":
		if l.cursor < count-1 {
			l.cursor++
		}
	case "k", "up":
		if l.cursor > 0 {
			l.cursor--
		}
	case "g", "home":
		l.cursor = 0
	case "G", "end":
		l.cursor = count - 1
	case "ctrl+d", "pgdown":
		l.cursor += l.maxVisible / 2
		if l.cursor >= count {
			l.cursor = count - 1
		}
	case "ctrl+u", "pgup":
		l.cursor -= l.maxVisible / 2
		if l.cursor < 0 {
			l.cursor = 0
		}
	}
	l.ensureVisible()
	return nil
}

// StartFilter activates the filter input
func (l *ResultList) StartFilter() {
	l.filterActive = true
	l.filterInput.Focus()
	l.recalcMaxVisible()
}

// IsFiltering returns true if filter mode is active
func (l *ResultList) IsFiltering() bool {
	return l.filterActive
}

// IsFilterTyping returns true if filter is active AND input is focused
func (l *ResultList) IsFilterTyping() bool {
	return l.filterActive && l.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all items
func (l *ResultList) ClearFilter() {
	l.clearFilter()
}

func (l *ResultList) recalcMaxVisible() {
	interiorHeight := l.height - BorderHeight
	l.maxVisible = interiorHeight - ScrollIndicatorLines - 1 // -1 for title
	if l.filterActive {
		l.maxVisible--
	}
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
}

func (l *ResultList) ensureVisible() {
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
}

func (l *ResultList) clampCursor() {
	if n := l.Len(); l.cursor >= n {
		l.cursor = n - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
	if l.offset > l.cursor {
		l.offset = l.cursor
	}
	l.ensureVisible()
}

func (l *ResultList) clearFilter() {
	l.filterActive = false
	l.filterQuery = ""
	l.filteredIdx = nil
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.recalcMaxVisible()
	l.clampCursor()
}

func (l *ResultList) applyFilter() {
	query := l.filterInput.Value()
	if query == l.filterQuery && l.filteredIdx != nil {
		return
	}
	l.filterQuery = query

	if strings.TrimSpace(query) == "" {
		l.filteredIdx = nil
		return
	}

	position := make(map[string]int, len(l.items))
	details := make([]*domain.ImageDetail, 0, len(l.items))
	for i, it := range l.items {
		if d, ok := l.detail(it.ID); ok {
			position[it.ID] = i
			details = append(details, d)
		}
	}

	results := search.FilterLoaded(query, details)
	l.filteredIdx = make([]int, 0, len(results))
	for _, r := range results {
		l.filteredIdx = append(l.filteredIdx, position[r.Detail.ID])
	}

	// Reset cursor to first match
	l.cursor = 0
	l.offset = 0
}

func (l *ResultList) mapIndex(i int) int {
	if l.filteredIdx != nil && i < len(l.filteredIdx) {
		return l.filteredIdx[i]
	}
	return i
}

// View renders the list inside a border. title heads the list; placeholder
// replaces the rows when the list is empty.
func (l *ResultList) View(title, placeholder string) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Accent)
	frameW, frameH := style.GetFrameSize()

	return style.
		Width(l.width - frameW).
		Height(l.height - frameH).
		Render(l.renderContent(title, placeholder))
}

func (l *ResultList) renderContent(title, placeholder string) string {
	itemWidth := l.width - BorderWidth
	if itemWidth < 10 {
		itemWidth = 10
	}

	titleLine := styles.AccentStyle.Render(styles.Truncate(title, itemWidth))

	count := l.Len()
	if count == 0 {
		msg := placeholder
		if l.filterActive && l.filterQuery != "" {
			msg = "No loaded posts match"
		}
		content := titleLine + "\n \n" + styles.DimStyle.Render(msg) + "\n "
		if l.filterActive {
			content += "\n" + l.renderFilterBar()
		}
		return content
	}

	end := l.offset + l.maxVisible
	if end > count {
		end = count
	}

	var lines []string
	for i := l.offset; i < end; i++ {
		lines = append(lines, l.renderItem(l.items[l.mapIndex(i)], i == l.cursor, itemWidth))
	}

	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if l.filterActive {
		content += "\n" + l.renderFilterBar()
	}
	return content
}

func (l *ResultList) renderItem(item domain.ImageRef, cursor bool, width int) string {
	accent := styles.Accent
	dim := styles.DimGray

	mark := styles.UnselectedChar
	markFg := dim
	if l.selected(item.ID) {
		mark = styles.SelectedChar
		markFg = accent
	}

	short := item.ID
	if len(short) > 8 {
		short = short[:8]
	}

	text := "…"
	var textFg *lipgloss.Color
	if d, ok := l.detail(item.ID); ok {
		text = d.Excerpt(0)
		if text == "" {
			text = "(no text)"
		}
	} else {
		textFg = &dim
	}
	// mark + space + id + space, plus row margins
	text = styles.Truncate(text, width-len(short)-6)

	parts := []styles.RowPart{
		{Text: mark, Foreground: &markFg},
		{Text: " " + short, Foreground: &dim},
		{Text: " " + text, Foreground: textFg},
	}
	return styles.RenderListRow(parts, cursor, width)
}

func (l *ResultList) renderFilterBar() string {
	countStr := ""
	if l.filterQuery != "" {
		countStr = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", l.Len(), len(l.items)))
	}
	return l.filterInput.View() + countStr
}
