package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Zachkp/webresume/internal/config"
	"github.com/Zachkp/webresume/internal/tui"
)

//nolint:gochecknoglobals // Cobra boilerplate
var (
	browseURL     string
	browseLogFile string
)

//nolint:gochecknoglobals // Cobra boilerplate
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse a running resume site in the terminal",
	Long: `Browse the resume of a running site in the terminal.

The resume is polled from the site's REST API and updates in place. Use the
arrow keys (or h/l) to move between sections, number keys to jump, drag with
the mouse to swipe, r to refresh and c to chat.

Example:
  webresume browse --url https://resume.example.com`,
	RunE: runBrowse,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(browseCmd)
	browseCmd.Flags().StringVar(&browseURL, "url", "http://localhost:8080", "Base URL of the resume site")
	browseCmd.Flags().StringVar(&browseLogFile, "log-file", "", "Write logs to this file (logs are discarded otherwise)")
}

func runBrowse(cmd *cobra.Command, args []string) (err error) {
	cfg := config.Load()

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	log := slog.New(slog.DiscardHandler)
	if browseLogFile != "" {
		var f *os.File
		f, err = os.OpenFile(browseLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			err = errors.Wrapf(err, "failed to open log file: %s", browseLogFile)
			return err
		}
		defer f.Close()
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		log = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = tui.Run(ctx, tui.Options{
		BaseURL:  browseURL,
		Interval: cfg.RefreshInterval,
		Persona:  cfg.ChatPersona,
		Log:      log,
	})
	if err != nil {
		err = errors.Wrap(err, "terminal client failed")
	}
	return err
}
