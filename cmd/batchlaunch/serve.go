package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/eastway/batchlaunch/internal/account"
	"github.com/eastway/batchlaunch/internal/config"
	"github.com/eastway/batchlaunch/internal/logger"
	"github.com/eastway/batchlaunch/internal/metrics"
	"github.com/eastway/batchlaunch/internal/scanner"
	"github.com/eastway/batchlaunch/internal/script"
	"github.com/eastway/batchlaunch/internal/server"
	storefactory "github.com/eastway/batchlaunch/internal/store/factory"
	"github.com/eastway/batchlaunch/internal/supervisor"
)

// logSink routes supervisor events into the structured log. The daemon has
// no UI of its own; API clients poll /status for liveness.
type logSink struct{}

func (logSink) ProcessStatus(id account.ID, login string, running bool) {
	slog.Info("client status changed", "account", string(id), "login", login, "running", running)
}

func (logSink) Notify(msg string, err error) {
	slog.Error(msg, "error", err)
}

func newServeCmd(gf *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the supervisor daemon with the HTTP control API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(gf.ConfigPath)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
}

func runServe(cfg *config.Config) error {
	if w := logger.Setup(cfg.Log); w != nil {
		defer func() { _ = w.Close() }()
	}
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	st, err := storefactory.New(cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()
	if err := st.EnsureSchema(context.Background()); err != nil {
		return fmt.Errorf("store schema: %w", err)
	}

	sup := supervisor.New(logSink{}, supervisor.Options{
		PollInterval: cfg.PollInterval,
		ScriptGrace:  cfg.ScriptGrace,
		Render:       renderOptions(cfg),
	})
	sup.Start()
	defer sup.Shutdown()

	sc := scanner.New(cfg.Scan.MaxDepth, cfg.Scan.MaxCandidates)
	router := server.NewRouter(sup, st, sc, cfg.Root, cfg.LaunchDelay, "/api")
	srv := server.NewServer(cfg.Listen, router)
	slog.Info("daemon started", "listen", cfg.Listen, "root", cfg.Root)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func renderOptions(cfg *config.Config) script.RenderOptions {
	return script.RenderOptions{IncludeCharacter: cfg.IncludeCharacter}
}
