// Package supervisor owns the launch/poll/close lifecycle of game-client
// processes, one per account. Its tracked-record set is the single source
// of truth for "is this account currently running". Children are spawned
// detached and fire-and-forget: the supervisor holds only process
// identifiers, never live handles, and detached clients intentionally
// outlive it.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/eastway/batchlaunch/internal/account"
	"github.com/eastway/batchlaunch/internal/locator"
	"github.com/eastway/batchlaunch/internal/metrics"
	"github.com/eastway/batchlaunch/internal/script"
	"github.com/eastway/batchlaunch/internal/textenc"
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultScriptGrace  = 10 * time.Second
)

// Record is the bookkeeping entry mapping an account to a live OS process.
type Record struct {
	AccountID account.ID
	PID       int
	Login     string
	StartedAt time.Time
}

// EventSink receives outward events. It is owned by the host application;
// a nil sink disables emission. Implementations must tolerate calls from
// the poll goroutine.
type EventSink interface {
	// ProcessStatus reports a liveness transition for one account.
	ProcessStatus(id account.ID, login string, running bool)
	// Notify reports a human-readable error notification.
	Notify(msg string, err error)
}

// Options configures a Supervisor. Zero values fall back to defaults.
type Options struct {
	PollInterval time.Duration
	// ScriptDir holds short-lived rendered scripts; created as a private
	// temp directory when empty.
	ScriptDir   string
	ScriptGrace time.Duration
	Render      script.RenderOptions
}

// Supervisor tracks one process per account identifier.
type Supervisor struct {
	mu      sync.Mutex
	records map[account.ID]Record

	sink EventSink
	opts Options

	stopOnce sync.Once
	stop     chan struct{}

	scriptOnce sync.Once
	scriptDir  string

	// Overridable for tests.
	probe func(pid int) bool
	kill  func(pid int) error
	wait  func(ctx context.Context, d time.Duration) bool
}

// New constructs a Supervisor. Call Start to begin the liveness poll.
func New(sink EventSink, opts Options) *Supervisor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.ScriptGrace <= 0 {
		opts.ScriptGrace = DefaultScriptGrace
	}
	s := &Supervisor{
		records: make(map[account.ID]Record),
		sink:    sink,
		opts:    opts,
		stop:    make(chan struct{}),
		probe:   probePID,
		kill:    killPID,
	}
	s.wait = s.waitFor
	return s
}

// Launch resolves the executable under rootDir, renders a launch script,
// and spawns it detached. A successful spawn records the account as
// running, superseding any record from an earlier launch. Failure to
// resolve or spawn affects only this account.
func (s *Supervisor) Launch(a account.Account, rootDir string) error {
	exePath, err := locator.Locate(rootDir)
	if err != nil {
		metrics.IncLaunchFailure(a.Login)
		return fmt.Errorf("launch %s: %w", a.Login, err)
	}

	text := script.Render(a, exePath, s.opts.Render)
	scriptPath, err := s.writeScript(text)
	if err != nil {
		metrics.IncLaunchFailure(a.Login)
		return fmt.Errorf("launch %s: write script: %w", a.Login, err)
	}

	cmd := launchCommand(scriptPath)
	cmd.Dir = filepath.Dir(exePath)
	if null, err := os.OpenFile(os.DevNull, os.O_RDWR, 0); err == nil {
		cmd.Stdin = null
		cmd.Stdout = null
		cmd.Stderr = null
		defer func() { _ = null.Close() }()
	}

	if err := cmd.Start(); err != nil {
		_ = os.Remove(scriptPath)
		metrics.IncLaunchFailure(a.Login)
		return fmt.Errorf("launch %s: spawn: %w", a.Login, err)
	}

	pid := 0
	if cmd.Process != nil {
		pid = cmd.Process.Pid
		// Release ownership; the OS/init system reaps the detached child.
		_ = cmd.Process.Release()
	}
	s.removeScriptLater(scriptPath)
	if pid == 0 {
		metrics.IncLaunchFailure(a.Login)
		return fmt.Errorf("launch %s: no process id obtained", a.Login)
	}

	rec := Record{AccountID: a.ID, PID: pid, Login: a.Login, StartedAt: time.Now()}
	s.mu.Lock()
	s.records[a.ID] = rec
	n := len(s.records)
	s.mu.Unlock()

	metrics.IncLaunch(a.Login)
	metrics.SetRunningAccounts(n)
	s.notifyStatus(a.ID, a.Login, true)
	slog.Info("launched client", "login", a.Login, "pid", pid, "exe", exePath)
	return nil
}

// Close force-terminates the tracked process for id. Untracked ids are a
// no-op. The record is removed and a stopped event fires regardless of the
// kill outcome: state consistency beats kill confirmation.
func (s *Supervisor) Close(id account.ID) {
	s.mu.Lock()
	rec, ok := s.records[id]
	if ok {
		delete(s.records, id)
	}
	n := len(s.records)
	s.mu.Unlock()
	if !ok {
		return
	}
	if err := s.kill(rec.PID); err != nil {
		slog.Warn("close: kill failed", "login", rec.Login, "pid", rec.PID, "error", err)
	}
	metrics.IncStop(rec.Login)
	metrics.SetRunningAccounts(n)
	s.notifyStatus(id, rec.Login, false)
	slog.Info("closed client", "login", rec.Login, "pid", rec.PID)
}

// CloseMany closes each id; one failure never blocks the rest.
func (s *Supervisor) CloseMany(ids []account.ID) {
	for _, id := range ids {
		s.Close(id)
	}
}

// Running reports whether id is currently tracked.
func (s *Supervisor) Running(id account.ID) bool {
	s.mu.Lock()
	_, ok := s.records[id]
	s.mu.Unlock()
	return ok
}

// ListRunning returns a snapshot copy of the tracked records. It does not
// update as state changes.
func (s *Supervisor) ListRunning() []Record {
	s.mu.Lock()
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	s.mu.Unlock()
	return out
}

// Start runs the background liveness poll until Shutdown.
func (s *Supervisor) Start() {
	go func() {
		t := time.NewTicker(s.opts.PollInterval)
		defer t.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-t.C:
				s.pollOnce()
			}
		}
	}()
}

// Shutdown stops the poll loop. Tracked processes are left running:
// detached clients are meant to outlive the supervising process.
func (s *Supervisor) Shutdown() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// pollOnce reconciles tracked records against OS-level process liveness.
// This is the only path that notices externally terminated clients.
func (s *Supervisor) pollOnce() {
	for _, rec := range s.ListRunning() {
		if s.probe(rec.PID) {
			continue
		}
		s.mu.Lock()
		cur, ok := s.records[rec.AccountID]
		// A launch may have superseded the record while the probe ran;
		// only remove what the probe actually saw dead.
		if !ok || cur.PID != rec.PID {
			s.mu.Unlock()
			continue
		}
		delete(s.records, rec.AccountID)
		n := len(s.records)
		s.mu.Unlock()

		metrics.IncPollReaped()
		metrics.SetRunningAccounts(n)
		s.notifyStatus(rec.AccountID, rec.Login, false)
		slog.Info("client gone, record reaped", "login", rec.Login, "pid", rec.PID)
	}
}

func (s *Supervisor) notifyStatus(id account.ID, login string, running bool) {
	if s.sink != nil {
		s.sink.ProcessStatus(id, login, running)
	}
}

func (s *Supervisor) notifyError(msg string, err error) {
	if s.sink != nil {
		s.sink.Notify(msg, err)
	}
}

// writeScript renders to a private temp location with owner-only access.
func (s *Supervisor) writeScript(text string) (string, error) {
	dir, err := s.ensureScriptDir()
	if err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, "launch-*"+script.Extension)
	if err != nil {
		return "", err
	}
	path := f.Name()
	_, werr := f.Write(textenc.EncodeScript(text))
	cerr := f.Close()
	if werr != nil {
		_ = os.Remove(path)
		return "", werr
	}
	if cerr != nil {
		_ = os.Remove(path)
		return "", cerr
	}
	return path, nil
}

func (s *Supervisor) ensureScriptDir() (string, error) {
	var err error
	s.scriptOnce.Do(func() {
		if s.opts.ScriptDir != "" {
			s.scriptDir = s.opts.ScriptDir
			err = os.MkdirAll(s.scriptDir, 0o700)
			return
		}
		s.scriptDir, err = os.MkdirTemp("", "batchlaunch-")
	})
	if err != nil {
		return "", err
	}
	if s.scriptDir == "" {
		return "", fmt.Errorf("script dir unavailable")
	}
	return s.scriptDir, nil
}

// removeScriptLater deletes the rendered script after the handoff window.
// The script must not outlive the grace delay; deletion failures are
// logged, never raised.
func (s *Supervisor) removeScriptLater(path string) {
	time.AfterFunc(s.opts.ScriptGrace, func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("temp script cleanup failed", "path", path, "error", err)
		}
	})
}
