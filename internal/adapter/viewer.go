package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// Viewer opens image and album URLs in an external program
type Viewer struct {
	command string   // configured viewer command, empty for system default
	args    []string // additional arguments for the viewer
	goos    string
	start   func(name string, args ...string) error
	logger  *slog.Logger
}

// NewViewer creates a viewer using command, or the system handler when empty
func NewViewer(cfg ViewerConfig, logger *slog.Logger) *Viewer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Viewer{
		command: cfg.Command,
		args:    cfg.Args,
		goos:    runtime.GOOS,
		start:   startDetached,
		logger:  logger,
	}
}

// Open launches url without waiting for the viewer to exit
func (v *Viewer) Open(url string) error {
	name, args := v.commandLine(url)
	v.logger.Info("opening in viewer", "command", name, "args", args)
	if err := v.start(name, args...); err != nil {
		v.logger.Error("failed to open viewer", "error", err, "command", name)
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

// commandLine resolves the program and arguments for url
func (v *Viewer) commandLine(url string) (string, []string) {
	if v.command != "" {
		args := append(append([]string{}, v.args...), url)
		return v.command, args
	}

	switch v.goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", "", url}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", []string{url}
	}
}

func startDetached(name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	return exec.Command(name, args...).Start()
}
