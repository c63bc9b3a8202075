package tui

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/pixdeck/internal/adapter"
	"github.com/mmcdole/pixdeck/internal/adapter/gallery"
	"github.com/mmcdole/pixdeck/internal/album"
	"github.com/mmcdole/pixdeck/internal/domain"
	"github.com/mmcdole/pixdeck/internal/image"
	"github.com/mmcdole/pixdeck/internal/search"
	"github.com/mmcdole/pixdeck/internal/selection"
	"github.com/mmcdole/pixdeck/internal/tui/components"
	"github.com/mmcdole/pixdeck/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateSearching
	StateHelp
)

const (
	// Rows left below the cursor before the next page is requested
	LoadMoreThreshold = 5

	// Vertical layout: search bar, detail line, footer
	ChromeHeight = 3

	statusTimeout = 4 * time.Second

	albumBusyText = "album update already in progress"
)

// Services bundles everything the model talks to
type Services struct {
	Pager     *search.Pager
	Selection *selection.Set
	Images    *image.Service
	Albums    *album.Service
	Cache     domain.AlbumQueries // optional; fills the picker before the refresh lands
	Composer  *album.Composer
	Viewer    *adapter.Viewer
	BaseURL   string // used to build file URLs for the viewer
	Logger    *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Services
	Pager     *search.Pager
	Selection *selection.Set
	ImageSvc  *image.Service
	AlbumSvc  *album.Service
	AlbumDB   domain.AlbumQueries
	Composer  *album.Composer
	Viewer    *adapter.Viewer
	baseURL   string
	logger    *slog.Logger

	// UI Components
	Results     *components.ResultList
	SearchInput textinput.Model
	AlbumForm   components.AlbumForm
	AlbumPicker components.AlbumPicker
	Spinner     spinner.Model

	// Search context
	Query       string
	AlbumChance bool
	loadedCount int // items already handed to prefetch

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg   string
	StatusIsErr bool
	Busy        bool // album operation in flight
}

// NewModel creates a new application model. albumChance sets the initial
// search mode.
func NewModel(svc Services, albumChance bool) Model {
	logger := svc.Logger
	if logger == nil {
		logger = slog.Default()
	}

	si := textinput.New()
	si.Placeholder = "search posts..."
	si.Prompt = "Search: "
	si.PromptStyle = styles.AccentStyle
	si.CharLimit = 100

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.SpinnerStyle),
	)

	return Model{
		State:       StateBrowsing,
		Pager:       svc.Pager,
		Selection:   svc.Selection,
		ImageSvc:    svc.Images,
		AlbumSvc:    svc.Albums,
		AlbumDB:     svc.Cache,
		Composer:    svc.Composer,
		Viewer:      svc.Viewer,
		baseURL:     svc.BaseURL,
		logger:      logger,
		Results:     components.NewResultList(svc.Images.Cached, svc.Selection.Contains),
		SearchInput: si,
		AlbumForm:   components.NewAlbumForm(),
		AlbumPicker: components.NewAlbumPicker(),
		Spinner:     sp,
		AlbumChance: albumChance,
	}
}

// Init runs the unfiltered search so the list is never empty on start
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		SearchCmd(m.Pager, m.Query, m.AlbumChance),
		m.Spinner.Tick,
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case PageLoadedMsg:
		if msg.Query != m.Query {
			// Superseded query; the pager already dropped its result
			return m, nil
		}
		return m, m.applyPagerState()

	case DetailLoadedMsg, PrefetchDoneMsg:
		// Details live in the image cache; the next render picks them up
		return m, nil

	case AlbumsLoadedMsg:
		m.AlbumPicker.SetAlbums(msg.Albums)
		return m, nil

	case AlbumComposedMsg:
		m.Busy = false
		m.AlbumPicker.Hide()
		if msg.Created {
			return m, m.setStatus("Created album "+msg.Summary.String(), false)
		}
		return m, m.setStatus("Updated album "+msg.Summary.String(), false)

	case ViewerOpenedMsg:
		return m, m.setStatus("Opened "+shortID(msg.ID), false)

	case ErrMsg:
		if msg.Context == ctxCreateAlbum || msg.Context == ctxAddToAlbum {
			m.Busy = false
		}
		if m.AlbumPicker.IsVisible() && msg.Context == ctxLoadAlbums {
			m.AlbumPicker.Hide()
		}
		m.logger.Error("operation failed", "context", msg.Context, "error", msg.Err)
		return m, m.setStatus(describeError(msg), true)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

// applyPagerState copies the pager snapshot into the list and schedules
// prefetch for new items and, if the cursor is already near the end, the
// next page.
func (m *Model) applyPagerState() tea.Cmd {
	st := m.Pager.State()
	m.Results.SetItems(st.Items)

	var cmds []tea.Cmd
	if st.LastError != nil {
		cmds = append(cmds, m.setStatus(describeError(ErrMsg{Err: st.LastError, Context: "searching"}), true))
	}

	if m.loadedCount > len(st.Items) {
		m.loadedCount = 0
	}
	if fresh := st.Items[m.loadedCount:]; len(fresh) > 0 {
		ids := make([]string, len(fresh))
		for i, ref := range fresh {
			ids[i] = ref.ID
		}
		m.loadedCount = len(st.Items)
		cmds = append(cmds, PrefetchCmd(m.ImageSvc, ids))
	}

	cmds = append(cmds, m.maybeLoadMore(st))
	return tea.Batch(cmds...)
}

// maybeLoadMore requests the next page when the cursor nears the end of the
// loaded items. A failed acquisition waits for an explicit retry.
func (m *Model) maybeLoadMore(st search.State) tea.Cmd {
	if !st.HasMore || st.Loading || st.LoadingMore || st.LastError != nil {
		return nil
	}
	if !m.Results.NearEnd(LoadMoreThreshold) {
		return nil
	}
	return LoadMoreCmd(m.Pager, m.Query)
}

// startSearch replaces the result list with the first page of query
func (m *Model) startSearch(query string) tea.Cmd {
	m.Query = query
	m.loadedCount = 0
	m.Results.Reset()
	m.StatusMsg = ""
	m.StatusIsErr = false
	return SearchCmd(m.Pager, query, m.AlbumChance)
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return ClearStatusCmd(statusTimeout)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Handle state-specific keys
	if m.State == StateHelp {
		m.State = StateBrowsing
		return m, nil
	}

	// Handle album form if visible
	if m.AlbumForm.IsVisible() {
		var cmd tea.Cmd
		var submitted bool
		m.AlbumForm, cmd, submitted = m.AlbumForm.Update(msg)
		if submitted {
			if m.Busy {
				return m, m.setStatus(albumBusyText, true)
			}
			title, desc := m.AlbumForm.Title(), m.AlbumForm.Description()
			m.AlbumForm.Hide()
			m.Busy = true
			return m, CreateAlbumCmd(m.Composer, title, desc)
		}
		return m, cmd
	}

	// Handle album picker if visible
	if m.AlbumPicker.IsVisible() {
		switch m.AlbumPicker.HandleKeyMsg(msg) {
		case components.PickerClose:
			m.AlbumPicker.Hide()
		case components.PickerChoose:
			if m.Busy {
				return m, m.setStatus(albumBusyText, true)
			}
			if chosen, ok := m.AlbumPicker.Chosen(); ok {
				m.AlbumPicker.Hide()
				m.Busy = true
				return m, AddToAlbumCmd(m.Composer, chosen.ID)
			}
		case components.PickerCreate:
			m.AlbumPicker.Hide()
			m.showTitleModal()
		}
		return m, nil
	}

	if m.State == StateSearching {
		switch msg.String() {
		case "esc":
			m.State = StateBrowsing
			m.SearchInput.Blur()
			m.SearchInput.SetValue(m.Query)
			return m, nil
		case "enter":
			m.State = StateBrowsing
			m.SearchInput.Blur()
			return m, m.startSearch(strings.TrimSpace(m.SearchInput.Value()))
		}
		var cmd tea.Cmd
		m.SearchInput, cmd = m.SearchInput.Update(msg)
		return m, cmd
	}

	// Filter input swallows everything while typing
	if m.Results.IsFilterTyping() {
		return m, m.Results.Update(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Escape):
		if m.Results.IsFiltering() {
			m.Results.ClearFilter()
		} else {
			m.StatusMsg = ""
			m.StatusIsErr = false
		}
		return m, nil

	case key.Matches(msg, Keys.Search):
		m.State = StateSearching
		m.SearchInput.SetValue(m.Query)
		m.SearchInput.CursorEnd()
		return m, m.SearchInput.Focus()

	case key.Matches(msg, Keys.Filter):
		m.Results.StartFilter()
		return m, nil

	case key.Matches(msg, Keys.AlbumChance):
		m.AlbumChance = !m.AlbumChance
		return m, m.startSearch(m.Query)

	case key.Matches(msg, Keys.ToggleSelect):
		if ref, ok := m.Results.Selected(); ok {
			m.Selection.Toggle(ref.ID)
		}
		return m, nil

	case key.Matches(msg, Keys.ClearSelection):
		m.Selection.Clear()
		return m, nil

	case key.Matches(msg, Keys.NewAlbum):
		if m.Busy {
			return m, m.setStatus(albumBusyText, true)
		}
		if m.Selection.Count() == 0 {
			return m, m.setStatus(domain.ErrEmptySelection.Error(), true)
		}
		m.showTitleModal()
		return m, nil

	case key.Matches(msg, Keys.AddToAlbum):
		if m.Busy {
			return m, m.setStatus(albumBusyText, true)
		}
		count := m.Selection.Count()
		if count == 0 {
			return m, m.setStatus(domain.ErrEmptySelection.Error(), true)
		}
		m.AlbumPicker.Show(count)
		if m.AlbumDB != nil {
			if cached, ok := m.AlbumDB.CachedAlbums(); ok {
				m.AlbumPicker.SetAlbums(cached)
			}
		}
		return m, LoadAlbumsCmd(m.AlbumSvc)

	case key.Matches(msg, Keys.Open):
		if ref, ok := m.Results.Selected(); ok {
			return m, OpenCmd(m.Viewer, ref.ID, gallery.FileURL(m.baseURL, ref.ID))
		}
		return m, nil

	case key.Matches(msg, Keys.Retry):
		st := m.Pager.State()
		if st.LastError == nil {
			return m, nil
		}
		if len(st.Items) == 0 {
			return m, m.startSearch(m.Query)
		}
		return m, LoadMoreCmd(m.Pager, m.Query)
	}

	// Navigation goes to the list
	cmd := m.Results.Update(msg)
	return m, tea.Batch(cmd, m.afterMove())
}

// afterMove loads the detail under the cursor and the next page if needed
func (m *Model) afterMove() tea.Cmd {
	var cmds []tea.Cmd
	if ref, ok := m.Results.Selected(); ok {
		if _, cached := m.ImageSvc.Cached(ref.ID); !cached {
			cmds = append(cmds, LoadDetailCmd(m.ImageSvc, ref.ID))
		}
	}
	cmds = append(cmds, m.maybeLoadMore(m.Pager.State()))
	return tea.Batch(cmds...)
}

func (m *Model) showTitleModal() {
	m.AlbumForm.Show(m.Selection.Count())
}

func (m *Model) updateLayout() {
	m.Results.SetSize(m.Width, m.Height-ChromeHeight)
	m.AlbumPicker.SetWidth(m.Width)
	m.SearchInput.Width = m.Width / 2
}

// describeError turns an error into a one-line status
func describeError(msg ErrMsg) string {
	var serverErr *domain.ServerError
	switch domain.KindOf(msg.Err) {
	case domain.KindNetwork:
		return msg.Context + ": server unreachable"
	case domain.KindAuth:
		return msg.Context + ": token rejected (run pixdeck login)"
	case domain.KindServer:
		if errors.As(msg.Err, &serverErr) && serverErr.Message != "" {
			return msg.Context + ": " + serverErr.Message
		}
	}
	return msg.Error()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
