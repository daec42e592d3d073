package supervisor

import (
	"context"
	"fmt"
	"time"

	"github.com/eastway/batchlaunch/internal/account"
)

// Delay bounds for multi-account batches. Whatever was configured
// upstream, the effective inter-launch delay stays inside this range.
const (
	MinLaunchDelay = 10 * time.Second
	MaxLaunchDelay = 60 * time.Second

	// settleDelay gives each freshly spawned client a moment before the
	// next launch, avoiding contention from near-simultaneous creation.
	settleDelay = 2 * time.Second
)

// ClampDelay bounds d into [MinLaunchDelay, MaxLaunchDelay].
func ClampDelay(d time.Duration) time.Duration {
	if d < MinLaunchDelay {
		return MinLaunchDelay
	}
	if d > MaxLaunchDelay {
		return MaxLaunchDelay
	}
	return d
}

// LaunchBatch launches the accounts in order. A single account launches
// immediately with no delay; a batch launches the first immediately and
// then waits the clamped delay plus a settle delay before each subsequent
// launch. Per-account failures are reported via the sink and never stop
// the rest of the batch. Cancelling ctx stops between launches.
func (s *Supervisor) LaunchBatch(ctx context.Context, accts []account.Account, rootDir string, delay time.Duration) {
	if len(accts) == 0 {
		return
	}
	if len(accts) == 1 {
		s.launchOne(accts[0], rootDir)
		return
	}
	d := ClampDelay(delay)
	for i, a := range accts {
		if i > 0 {
			if !s.wait(ctx, d) {
				return
			}
		}
		s.launchOne(a, rootDir)
		if i < len(accts)-1 {
			if !s.wait(ctx, settleDelay) {
				return
			}
		}
	}
}

func (s *Supervisor) launchOne(a account.Account, rootDir string) {
	if err := s.Launch(a, rootDir); err != nil {
		s.notifyError(fmt.Sprintf("launch failed for %s", a.Login), err)
	}
}

// waitFor sleeps d unless ctx is cancelled or the supervisor shuts down;
// returns false when interrupted.
func (s *Supervisor) waitFor(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-s.stop:
		return false
	case <-t.C:
		return true
	}
}
