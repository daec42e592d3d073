// Package batchlaunch launches and supervises game-client processes for
// user-defined accounts, generates and ingests launch scripts, and
// reconciles supervisor state against OS-level process liveness.
//
// This file re-exports the core types for external consumers. The aliases
// are zero-cost.
package batchlaunch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eastway/batchlaunch/internal/account"
	cfg "github.com/eastway/batchlaunch/internal/config"
	"github.com/eastway/batchlaunch/internal/locator"
	"github.com/eastway/batchlaunch/internal/metrics"
	"github.com/eastway/batchlaunch/internal/scanner"
	"github.com/eastway/batchlaunch/internal/script"
	iapi "github.com/eastway/batchlaunch/internal/server"
	"github.com/eastway/batchlaunch/internal/store"
	storefactory "github.com/eastway/batchlaunch/internal/store/factory"
	"github.com/eastway/batchlaunch/internal/supervisor"
)

type (
	Account   = account.Account
	AccountID = account.ID
	ServerTag = account.ServerTag
	Candidate = account.Candidate

	Supervisor = supervisor.Supervisor
	Record     = supervisor.Record
	EventSink  = supervisor.EventSink
	Options    = supervisor.Options

	RenderOptions = script.RenderOptions

	Scanner = scanner.Scanner

	Store = store.Store

	Config = cfg.Config
)

// ErrExecutableNotFound is the configuration error for a root directory
// with no game client in it.
var ErrExecutableNotFound = locator.ErrExecutableNotFound

// NewSupervisor constructs a supervisor; call Start to begin the liveness
// poll and Shutdown to stop it.
func NewSupervisor(sink EventSink, opts Options) *Supervisor {
	return supervisor.New(sink, opts)
}

// NewScanner constructs a directory scanner with the given ceilings
// (non-positive values use the defaults).
func NewScanner(maxDepth, maxCandidates int) *Scanner {
	return scanner.New(maxDepth, maxCandidates)
}

// LocateExecutable finds the client executable under root.
func LocateExecutable(root string) (string, error) { return locator.Locate(root) }

// RenderScript produces launch-script text for an account.
func RenderScript(a Account, exePath string, opts RenderOptions) string {
	return script.Render(a, exePath, opts)
}

// ParseScript extracts a partial account from script text.
func ParseScript(text string) Candidate { return script.Parse(text) }

// LoadConfig reads the TOML configuration file, applying defaults.
func LoadConfig(path string) (*Config, error) { return cfg.Load(path) }

// OpenStore opens the configured account store (schema not yet ensured).
func OpenStore(c store.Config) (Store, error) { return storefactory.New(c) }

// Import/export helpers move accounts between the store and flat files.

func ImportJSON(ctx context.Context, st Store, r io.Reader) (int, error) {
	return store.ImportJSON(ctx, st, r)
}

func ImportCSV(ctx context.Context, st Store, r io.Reader) (int, error) {
	return store.ImportCSV(ctx, st, r)
}

func ExportJSON(ctx context.Context, st Store, w io.Writer) error {
	return store.ExportJSON(ctx, st, w)
}

func ExportCSV(ctx context.Context, st Store, w io.Writer) error {
	return store.ExportCSV(ctx, st, w)
}

// NewHTTPServer starts the control API on addr for the given components.
func NewHTTPServer(addr, basePath string, sup *Supervisor, st Store, sc *Scanner, root string, delay time.Duration) *http.Server {
	return iapi.NewServer(addr, iapi.NewRouter(sup, st, sc, root, delay, basePath))
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// MetricsHandler serves Prometheus metrics for the default gatherer.
func MetricsHandler() http.Handler { return metrics.Handler() }
