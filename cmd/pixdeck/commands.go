package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mmcdole/pixdeck/internal/adapter"
	"github.com/mmcdole/pixdeck/internal/adapter/gallery"
	"github.com/mmcdole/pixdeck/internal/album"
	"github.com/mmcdole/pixdeck/internal/domain"
	"github.com/mmcdole/pixdeck/internal/selection"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const commandTimeout = 2 * time.Minute

// NewRootCmd creates the root command. build is called by every command that
// talks to the server; tests pass a factory wired to a fake server.
func NewRootCmd(build appFactory) *cobra.Command {
	var albumChance bool

	rootCmd := &cobra.Command{
		Use:           "pixdeck",
		Short:         "Browse gallery images and build albums from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("album-chance") {
				albumChance = a.cfg.Search.AlbumChance
			}
			return a.runTUI(albumChance)
		},
	}
	rootCmd.Flags().BoolVarP(&albumChance, "album-chance", "a", false, "start in album-chance mode")

	rootCmd.AddCommand(
		newSearchCmd(build),
		newAlbumCmd(build),
		newOpenCmd(build),
		newLoginCmd(),
		newLogoutCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// withApp builds the app and a timeout context around fn
func withApp(build appFactory, fn func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := build()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()
		return fn(ctx, cmd, args, a)
	}
}

// imageRow is the printed/JSON form of a search hit
type imageRow struct {
	ID      string `json:"id"`
	Creator string `json:"creator,omitempty"`
	Content string `json:"content,omitempty"`
	URL     string `json:"url"`
}

func newSearchCmd(build appFactory) *cobra.Command {
	var (
		albumChance bool
		pages       int
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "search [word]",
		Short: "Search images by post text",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(build, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			query := ""
			if len(args) == 1 {
				query = strings.TrimSpace(args[0])
			}
			if pages < 1 {
				pages = 1
			}

			pager := a.newPager()
			pager.Search(ctx, query, albumChance)
			for i := 1; i < pages && pager.State().HasMore && pager.State().LastError == nil; i++ {
				pager.LoadMore(ctx)
			}

			st := pager.State()
			if st.LastError != nil {
				return st.LastError
			}

			ids := make([]string, len(st.Items))
			for i, ref := range st.Items {
				ids[i] = ref.ID
			}
			if err := a.images.Prefetch(ctx, ids); err != nil {
				return err
			}

			rows := make([]imageRow, 0, len(ids))
			for _, id := range ids {
				row := imageRow{ID: id, URL: gallery.FileURL(a.client.BaseURL(), id)}
				if d, ok := a.images.Cached(id); ok {
					row.Creator = d.Creator
					row.Content = d.Excerpt(60)
				}
				rows = append(rows, row)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, rows)
			}

			t := newTable("ID", "CREATOR", "POST")
			for _, r := range rows {
				t.Row(r.ID, r.Creator, r.Content)
			}
			fmt.Fprintln(out, t.Render())
			fmt.Fprintln(out, searchFooter(len(rows), st.TotalHits, st.HasMore))
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&albumChance, "album-chance", "a", false, "only posts likely to belong in an album")
	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "number of result pages to load")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func searchFooter(count int, total *int, hasMore bool) string {
	switch {
	case total != nil:
		return fmt.Sprintf("%d of %d hits", count, *total)
	case hasMore:
		return fmt.Sprintf("%d hits (more available)", count)
	default:
		return fmt.Sprintf("%d hits", count)
	}
}

func newAlbumCmd(build appFactory) *cobra.Command {
	albumCmd := &cobra.Command{
		Use:   "album",
		Short: "Manage albums",
	}

	// List command
	var (
		creator string
		limit   int
		asJSON  bool
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List albums",
		Args:  cobra.NoArgs,
		RunE: withApp(build, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			var (
				albums []domain.AlbumItem
				err    error
			)
			if creator != "" && limit == 0 {
				albums, err = a.albums.FetchAlbumsByCreator(ctx, creator)
			} else {
				albums, err = a.albums.FetchAlbums(ctx, domain.AlbumFilter{CreatorID: creator, Limit: limit})
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), albums)
			}
			t := newTable("ID", "TITLE", "CREATOR")
			for _, al := range albums {
				t.Row(al.ID, al.Title, al.Creator)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		}),
	}
	listCmd.Flags().StringVar(&creator, "creator", "", "only albums by this user id")
	listCmd.Flags().IntVar(&limit, "limit", 0, "maximum albums to list (server default when 0)")
	listCmd.Flags().BoolVar(&asJSON, "json", false, "print albums as JSON")

	// Show command
	var showJSON bool
	showCmd := &cobra.Command{
		Use:   "show [album-id]",
		Short: "Show an album and its images",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(build, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			al, err := a.albums.FetchAlbum(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if showJSON {
				return writeJSON(out, al)
			}
			fmt.Fprintf(out, "%s\n", al.Title)
			if al.Description != "" {
				fmt.Fprintf(out, "%s\n", al.Description)
			}
			fmt.Fprintf(out, "id:      %s\n", al.ID)
			fmt.Fprintf(out, "creator: %s\n", al.Creator)
			fmt.Fprintf(out, "url:     %s\n", gallery.AlbumURL(a.client.BaseURL(), al.ID))
			fmt.Fprintf(out, "images:  %d\n", len(al.Images))
			for _, id := range al.Images {
				fmt.Fprintf(out, "  %s\n", id)
			}
			return nil
		}),
	}
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the album as JSON")

	// Create command
	var description string
	createCmd := &cobra.Command{
		Use:   "create [title] [image-id...]",
		Short: "Create an album from image ids",
		Args:  cobra.MinimumNArgs(2),
		RunE: withApp(build, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			composer := album.NewComposer(a.albums, selectionOf(args[1:]), a.logger)
			summary, err := composer.CreateFromSelection(ctx, args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created album %s: %s\n", summary.ID, summary)
			return nil
		}),
	}
	createCmd.Flags().StringVarP(&description, "description", "d", "", "album description")

	// Add command
	addCmd := &cobra.Command{
		Use:   "add [album-id] [image-id...]",
		Short: "Append images to an album",
		Args:  cobra.MinimumNArgs(2),
		RunE: withApp(build, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			composer := album.NewComposer(a.albums, selectionOf(args[1:]), a.logger)
			summary, err := composer.AddSelectionToAlbum(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated album %s: %s\n", summary.ID, summary)
			return nil
		}),
	}

	// Edit command
	var (
		newTitle       string
		newDescription string
	)
	editCmd := &cobra.Command{
		Use:   "edit [album-id]",
		Short: "Change an album's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(build, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			var req domain.UpdateAlbumRequest
			if cmd.Flags().Changed("title") {
				title := strings.TrimSpace(newTitle)
				if title == "" {
					return fmt.Errorf("album title is required: %w", domain.ErrInvalidInput)
				}
				req.Title = &title
			}
			if cmd.Flags().Changed("description") {
				req.Description = &newDescription
			}
			if req.Title == nil && req.Description == nil {
				return fmt.Errorf("nothing to change; pass --title or --description: %w", domain.ErrInvalidInput)
			}

			al, err := a.albums.UpdateAlbum(ctx, args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated album %s: %s\n", al.ID, domain.AlbumSummary{
				ID:          al.ID,
				Title:       al.Title,
				Description: al.Description,
				ImageCount:  len(al.Images),
			})
			return nil
		}),
	}
	editCmd.Flags().StringVar(&newTitle, "title", "", "new title")
	editCmd.Flags().StringVar(&newDescription, "description", "", "new description")

	// Delete command
	deleteCmd := &cobra.Command{
		Use:   "delete [album-id]",
		Short: "Delete an album",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(build, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			if err := a.albums.DeleteAlbum(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted album %s\n", args[0])
			return nil
		}),
	}

	albumCmd.AddCommand(listCmd, showCmd, createCmd, addCmd, editCmd, deleteCmd)
	return albumCmd
}

func newOpenCmd(build appFactory) *cobra.Command {
	var thumbnail bool
	cmd := &cobra.Command{
		Use:   "open [image-id]",
		Short: "Open an image in the configured viewer",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(build, func(ctx context.Context, cmd *cobra.Command, args []string, a *app) error {
			url := gallery.FileURL(a.client.BaseURL(), args[0])
			if thumbnail {
				url = gallery.ThumbnailURL(a.client.BaseURL(), args[0])
			}
			return a.viewer.Open(url)
		}),
	}
	cmd.Flags().BoolVarP(&thumbnail, "thumbnail", "t", false, "open the thumbnail instead of the full image")
	return cmd
}

func newLoginCmd() *cobra.Command {
	var serverURL string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save the server URL and an access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := adapter.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if serverURL != "" {
				cfg.Server.URL = strings.TrimRight(serverURL, "/")
			}
			if cfg.Server.URL == "" {
				return fmt.Errorf("no server configured; pass --url")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Token for %s (empty for none): ", cfg.Server.URL)
			token, err := readSecret(cmd.InOrStdin())
			fmt.Fprintln(cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("failed to read token: %w", err)
			}
			cfg.Server.Token = token

			if err := adapter.SaveConfig(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Configuration saved to %s\n", adapter.ConfigPath())
			return nil
		},
	}
	cmd.Flags().StringVar(&serverURL, "url", "", "gallery API root, e.g. https://gallery.example.com/api/v1")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the server, token and persistent cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := adapter.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := adapter.ClearServerConfig(); err != nil {
				return err
			}
			if err := adapter.ClearCache(cfg.Cache.Dir); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
			return nil
		},
	}
}

// readSecret reads a line without echo when in is a terminal
func readSecret(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pixdeck %s\n", Version)
		},
	}
}

// selectionOf builds a selection from ids given on the command line
func selectionOf(ids []string) *selection.Set {
	sel := selection.New()
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			sel.Select(id)
		}
	}
	return sel
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
