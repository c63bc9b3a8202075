package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/pixdeck/internal/album"
	"github.com/mmcdole/pixdeck/internal/domain"
	"github.com/mmcdole/pixdeck/internal/tui/styles"
)

// PickerAction is the outcome of a key press in the album picker
type PickerAction int

const (
	PickerNone   PickerAction = iota
	PickerClose               // dismissed
	PickerChoose              // an existing album was chosen
	PickerCreate              // "create new" was chosen
)

// AlbumPicker lets the user choose the album the selection goes into
type AlbumPicker struct {
	visible  bool
	loading  bool
	count    int // images that will be added
	albums   []domain.AlbumItem
	filtered []domain.AlbumItem
	query    textinput.Model
	cursor   int
	width    int
}

// NewAlbumPicker creates a new picker
func NewAlbumPicker() AlbumPicker {
	ti := textinput.New()
	ti.Placeholder = "type to filter albums..."
	ti.Prompt = "> "
	ti.CharLimit = 50
	return AlbumPicker{query: ti}
}

// Show opens the picker for count selected images. Albums arrive later via SetAlbums.
func (m *AlbumPicker) Show(count int) {
	m.visible = true
	m.loading = true
	m.count = count
	m.albums = nil
	m.filtered = nil
	m.cursor = 0
	m.query.SetValue("")
	m.query.Focus()
}

// SetAlbums fills the picker
func (m *AlbumPicker) SetAlbums(albums []domain.AlbumItem) {
	m.loading = false
	m.albums = albums
	m.refilter()
}

// Hide dismisses the picker
func (m *AlbumPicker) Hide() {
	m.visible = false
	m.query.Blur()
}

func (m *AlbumPicker) IsVisible() bool {
	return m.visible
}

func (m *AlbumPicker) SetWidth(width int) {
	m.width = width
}

// Chosen returns the album under the cursor
func (m *AlbumPicker) Chosen() (domain.AlbumItem, bool) {
	if m.cursor < len(m.filtered) {
		return m.filtered[m.cursor], true
	}
	return domain.AlbumItem{}, false
}

func (m *AlbumPicker) refilter() {
	m.filtered = album.FilterAlbums(m.query.Value(), m.albums)
	if m.cursor > len(m.filtered) {
		m.cursor = len(m.filtered)
	}
}

// HandleKeyMsg processes a key while the picker is visible. The last row is
// "create new album".
func (m *AlbumPicker) HandleKeyMsg(msg tea.KeyMsg) PickerAction {
	if !m.visible {
		return PickerNone
	}

	switch msg.String() {
	case "esc":
		return PickerClose
	case "down", "ctrl+n":
		if m.cursor < len(m.filtered) {
			m.cursor++
		}
		return PickerNone
	case "up", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
		}
		return PickerNone
	case "enter":
		if m.loading {
			return PickerNone
		}
		if m.cursor < len(m.filtered) {
			return PickerChoose
		}
		return PickerCreate
	}

	m.query, _ = m.query.Update(msg)
	m.cursor = 0
	m.refilter()
	return PickerNone
}

// View renders the picker
func (m *AlbumPicker) View() string {
	if !m.visible {
		return ""
	}

	modalWidth := 44
	if m.width > 0 && m.width < 60 {
		modalWidth = m.width - 10
	}
	rowWidth := modalWidth - 4

	var lines []string
	lines = append(lines, styles.ModalTitleStyle.Render(fmt.Sprintf("Add %d image(s) to album", m.count)))
	lines = append(lines, m.query.View(), "")

	if m.loading {
		lines = append(lines, styles.DimStyle.Render("Loading albums..."))
	}

	const maxRows = 10
	start := 0
	if m.cursor >= maxRows {
		start = m.cursor - maxRows + 1
	}
	for i := start; i < len(m.filtered) && i < start+maxRows; i++ {
		lines = append(lines, "  "+m.renderRow(m.filtered[i].Title, i == m.cursor, styles.LightGray, rowWidth))
	}

	lines = append(lines, "")
	lines = append(lines, "  "+m.renderRow("[+] Create new album...", m.cursor == len(m.filtered), styles.DimGray, rowWidth))
	lines = append(lines, "", styles.DimStyle.Render("↑/↓: Move  Enter: Choose  Esc: Cancel"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Accent).
		Background(styles.SlateDark).
		Padding(1, 2).
		Width(modalWidth).
		Render(strings.Join(lines, "\n"))
}

func (m *AlbumPicker) renderRow(text string, selected bool, fg lipgloss.Color, width int) string {
	style := lipgloss.NewStyle().Foreground(fg)
	if selected {
		style = lipgloss.NewStyle().Foreground(styles.White).Background(styles.SlateLight)
	}
	return style.Render(styles.Pad(text, width))
}
