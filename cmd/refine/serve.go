package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thedevdojo/refine/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the template source API",
	Long: `Serve starts the HTTP API that resolves marker tokens to template
source and writes edits back to disk. The server reads and writes project
files, so it must be explicitly enabled in the configuration and should
only ever run in development.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.Server.Enabled {
		return fmt.Errorf("source API is disabled; set server.enabled = true in the config")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	store := server.NewStore(cfg.Server.Backups, nil)
	srv := server.New(newFinder(cfg), store, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	color.Green("source API listening on http://%s", cfg.Server.Addr)
	return httpServer.ListenAndServe()
}
