package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/pixdeck/internal/search"
	"github.com/mmcdole/pixdeck/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	st := m.Pager.State()
	view := lipgloss.JoinVertical(lipgloss.Left,
		m.renderSearchBar(st),
		m.Results.View(listTitle(st), listPlaceholder(st)),
		m.renderDetailLine(),
		m.renderFooter(st),
	)

	// Overlay album picker if visible
	if m.AlbumPicker.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.AlbumPicker.View())
	}

	// Overlay album form if visible
	if m.AlbumForm.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.AlbumForm.View())
	}

	return view
}

// renderSearchBar shows the query (or the live input) and the search mode
func (m Model) renderSearchBar(st search.State) string {
	var left string
	if m.State == StateSearching {
		left = m.SearchInput.View()
	} else {
		query := st.Query
		if query == "" {
			query = styles.DimStyle.Render("(all posts)")
		}
		left = styles.AccentStyle.Render("Search: ") + query
	}

	mode := styles.DimBadgeStyle.Render("all")
	if m.AlbumChance {
		mode = styles.BadgeStyle.Render("album-chance")
	}

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(mode)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + mode
}

// renderDetailLine describes the image under the cursor
func (m Model) renderDetailLine() string {
	ref, ok := m.Results.Selected()
	if !ok {
		return styles.DimStyle.Render(" ")
	}

	detail, cached := m.ImageSvc.Cached(ref.ID)
	if !cached {
		return styles.DimStyle.Render(styles.Truncate(ref.ID+"  loading...", m.Width))
	}

	parts := []string{styles.SubtitleStyle.Render(shortID(detail.ID))}
	if detail.Creator != "" {
		parts = append(parts, styles.AccentStyle.Render("@"+detail.Creator))
	}
	if excerpt := detail.Excerpt(0); excerpt != "" {
		parts = append(parts, excerpt)
	}
	return styles.Truncate(strings.Join(parts, "  "), m.Width)
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter(st search.State) string {
	// Left side: spinner + status when loading or status message active
	var left string
	switch {
	case st.Loading:
		left = m.Spinner.View() + " " + styles.DimStyle.Render("Searching...")
	case st.LoadingMore:
		left = m.Spinner.View() + " " + styles.DimStyle.Render("Loading more...")
	case m.Busy:
		left = m.Spinner.View() + " " + styles.DimStyle.Render("Saving album...")
	case m.StatusMsg != "":
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.SuccessStyle.Render(m.StatusMsg)
		}
	}

	// Center section: selection count with the keys that act on it
	var center string
	if n := m.Selection.Count(); n > 0 {
		center = styles.AccentStyle.Render(fmt.Sprintf("%d selected", n)) +
			styles.DimStyle.Render("  ") +
			styles.AccentStyle.Render("n") + styles.DimStyle.Render(" New album  ") +
			styles.AccentStyle.Render("A") + styles.DimStyle.Render(" Add to album")
	}

	// Right side: "? help" hint
	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	// Layout: left + centered hints + right
	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		// Not enough space - just left + right
		gap := m.Width - leftWidth - rightWidth
		if gap < 0 {
			gap = 0
		}
		return left + strings.Repeat(" ", gap) + right
	}

	// Center the hints in available space
	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad

	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

// renderHelp renders the help screen from the key map
func (m Model) renderHelp() string {
	var lines []string
	for _, b := range Keys.HelpBindings() {
		h := b.Help()
		lines = append(lines, styles.HelpKeyStyle.Render(styles.Pad(h.Key, 10))+styles.HelpDescStyle.Render(h.Desc))
	}
	lines = append(lines, "", styles.DimStyle.Render("Press any key to return..."))

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(strings.Join(lines, "\n")))
}

// listTitle summarises how much of the result set is loaded
func listTitle(st search.State) string {
	loaded := len(st.Items)
	switch {
	case st.TotalHits != nil && !st.FilterMode:
		return fmt.Sprintf("Images %d/%d", loaded, *st.TotalHits)
	case st.HasMore:
		return fmt.Sprintf("Images %d+", loaded)
	default:
		return fmt.Sprintf("Images %d", loaded)
	}
}

func listPlaceholder(st search.State) string {
	switch {
	case st.Loading:
		return "Searching..."
	case st.LastError != nil:
		return "Search failed. Press r to retry"
	default:
		return "No images"
	}
}
