package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/pixdeck/internal/tui/styles"
)

const albumFormWidth = 48

// AlbumForm collects the title and description of a new album.
// Tab moves between the fields; Enter submits from either one.
type AlbumForm struct {
	visible bool
	count   int // images the album will start with
	fields  [2]textinput.Model
	focus   int
	errText string
}

const (
	fieldTitle = iota
	fieldDescription
)

func NewAlbumForm() AlbumForm {
	title := textinput.New()
	title.Placeholder = "album title"
	title.CharLimit = 100

	desc := textinput.New()
	desc.Placeholder = "description (optional)"
	desc.CharLimit = 500

	f := AlbumForm{fields: [2]textinput.Model{title, desc}}
	for i := range f.fields {
		f.fields[i].Prompt = ""
		f.fields[i].Width = albumFormWidth - 14
		f.fields[i].TextStyle = lipgloss.NewStyle().Foreground(styles.White)
		f.fields[i].PlaceholderStyle = styles.DimStyle
	}
	return f
}

// Show opens an empty form for count selected images
func (f *AlbumForm) Show(count int) {
	f.visible = true
	f.count = count
	f.errText = ""
	for i := range f.fields {
		f.fields[i].SetValue("")
	}
	f.setFocus(fieldTitle)
}

func (f *AlbumForm) Hide() {
	f.visible = false
	for i := range f.fields {
		f.fields[i].Blur()
	}
}

func (f AlbumForm) IsVisible() bool {
	return f.visible
}

// Title returns the trimmed title
func (f AlbumForm) Title() string {
	return strings.TrimSpace(f.fields[fieldTitle].Value())
}

// Description returns the trimmed description
func (f AlbumForm) Description() string {
	return strings.TrimSpace(f.fields[fieldDescription].Value())
}

func (f *AlbumForm) setFocus(i int) {
	f.focus = i
	for j := range f.fields {
		if j == i {
			f.fields[j].Focus()
		} else {
			f.fields[j].Blur()
		}
	}
}

// Update handles input events, returns (form, cmd, submitted).
// A blank title is refused in place and keeps the form open.
func (f AlbumForm) Update(msg tea.Msg) (AlbumForm, tea.Cmd, bool) {
	if !f.visible {
		return f, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			if f.Title() == "" {
				f.errText = "title is required"
				f.setFocus(fieldTitle)
				return f, nil, false
			}
			return f, nil, true
		case "esc":
			f.Hide()
			return f, nil, false
		case "tab", "shift+tab", "up", "down":
			f.setFocus(1 - f.focus)
			return f, nil, false
		}
	}

	f.errText = ""
	var cmd tea.Cmd
	f.fields[f.focus], cmd = f.fields[f.focus].Update(msg)
	return f, cmd, false
}

func (f AlbumForm) View() string {
	if !f.visible {
		return ""
	}

	row := lipgloss.NewStyle().Width(albumFormWidth).Background(styles.SlateDark)
	label := func(i int, name string) string {
		marker := "  "
		if f.focus == i {
			marker = "> "
		}
		return fmt.Sprintf("%s%-12s", marker, name)
	}

	header := fmt.Sprintf("New album (%d images)", f.count)
	if f.count == 1 {
		header = "New album (1 image)"
	}

	lines := []string{
		row.Foreground(styles.White).Bold(true).Render(header),
		row.Render(""),
		row.Render(label(fieldTitle, "Title") + f.fields[fieldTitle].View()),
		row.Render(label(fieldDescription, "Description") + f.fields[fieldDescription].View()),
		row.Render(""),
	}
	if f.errText != "" {
		lines = append(lines, row.Foreground(styles.Red).Render(f.errText))
	}
	lines = append(lines, row.Inherit(styles.DimStyle).Render("Tab: Next field  Enter: Create  Esc: Cancel"))

	return styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
