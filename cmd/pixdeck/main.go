package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/pixdeck/internal/adapter"
	"github.com/mmcdole/pixdeck/internal/adapter/gallery"
	"github.com/mmcdole/pixdeck/internal/album"
	"github.com/mmcdole/pixdeck/internal/image"
	"github.com/mmcdole/pixdeck/internal/search"
	"github.com/mmcdole/pixdeck/internal/selection"
	"github.com/mmcdole/pixdeck/internal/store"
	"github.com/mmcdole/pixdeck/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	root := NewRootCmd(buildApp)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the wired services for one invocation
type app struct {
	cfg    *adapter.Config
	logger *slog.Logger
	store  *store.GalleryStore
	client *gallery.Client
	images *image.Service
	albums *album.Service
	viewer *adapter.Viewer
}

// appFactory builds the app. Tests swap it for one pointing at a fake server.
type appFactory func() (*app, error)

// buildApp wires config, logging, storage, the gallery client and services
func buildApp() (*app, error) {
	// Load configuration
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting pixdeck", "version", Version)

	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("no server configured; run `pixdeck login --url <api root>` first")
	}

	return newApp(cfg, logger)
}

// newApp wires everything below the config
func newApp(cfg *adapter.Config, logger *slog.Logger) (*app, error) {
	var (
		st  *store.GalleryStore
		err error
	)
	if cfg.Cache.Dir == "" {
		st, err = store.NewSessionStore()
	} else {
		dir, expandErr := adapter.ExpandHome(cfg.Cache.Dir)
		if expandErr != nil {
			return nil, expandErr
		}
		st, err = store.NewGalleryStore(dir, cfg.Server.URL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	client := gallery.NewClient(gallery.Options{
		BaseURL:           cfg.Server.URL,
		Token:             cfg.Server.Token,
		Timeout:           cfg.Client.Timeout,
		RequestsPerSecond: cfg.Client.RequestsPerSecond,
		Burst:             cfg.Client.Burst,
	}, logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  st,
		client: client,
		images: image.NewService(client, st, logger),
		albums: album.NewService(client, st, logger),
		viewer: adapter.NewViewer(cfg.Viewer, logger),
	}, nil
}

// newPager creates a pager with the configured page size
func (a *app) newPager() *search.Pager {
	return search.NewPager(a.client, search.Options{
		PageSize:        a.cfg.Search.PageSize,
		MaxScanAttempts: a.cfg.Search.MaxScanAttempts,
	}, a.logger)
}

// Close releases the store
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close store", "error", err)
	}
}

// runTUI starts the interactive browser
func (a *app) runTUI(albumChance bool) error {
	sel := selection.New()
	model := tui.NewModel(tui.Services{
		Pager:     a.newPager(),
		Selection: sel,
		Images:    a.images,
		Albums:    a.albums,
		Cache:     album.NewQueries(a.store),
		Composer:  album.NewComposer(a.albums, sel, a.logger),
		Viewer:    a.viewer,
		BaseURL:   a.client.BaseURL(),
		Logger:    a.logger,
	}, albumChance)

	// Run the TUI
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	a.logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	a.logger.Info("shutting down")
	return nil
}
