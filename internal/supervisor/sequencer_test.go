package supervisor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/eastway/batchlaunch/internal/account"
)

func TestClampDelay(t *testing.T) {
	cases := []struct {
		in, want time.Duration
	}{
		{0, MinLaunchDelay},
		{5 * time.Second, MinLaunchDelay},
		{15 * time.Second, 15 * time.Second},
		{MaxLaunchDelay, MaxLaunchDelay},
		{5 * time.Minute, MaxLaunchDelay},
	}
	for _, c := range cases {
		if got := ClampDelay(c.in); got != c.want {
			t.Fatalf("ClampDelay(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func batchAccounts(n int) []account.Account {
	out := make([]account.Account, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, account.Account{
			ID:     account.ID(fmt.Sprintf("id%d", i)),
			Login:  fmt.Sprintf("user%d", i),
			Secret: "pw",
		})
	}
	return out
}

func TestLaunchBatchEmpty(t *testing.T) {
	s := New(nil, Options{})
	s.wait = func(context.Context, time.Duration) bool {
		t.Fatal("empty batch must not wait")
		return false
	}
	s.LaunchBatch(context.Background(), nil, t.TempDir(), 0)
}

func TestLaunchBatchSingleNoDelay(t *testing.T) {
	sink := &testSink{}
	s := New(sink, Options{})
	s.wait = func(context.Context, time.Duration) bool {
		t.Fatal("single account must launch without waiting")
		return false
	}
	// Empty root makes the launch fail fast; the batch shape is what is
	// under test here.
	s.LaunchBatch(context.Background(), batchAccounts(1), t.TempDir(), time.Hour)
	if sink.errCount() != 1 {
		t.Fatalf("expected one failed launch, got %d", sink.errCount())
	}
}

func TestLaunchBatchDelaySequence(t *testing.T) {
	sink := &testSink{}
	s := New(sink, Options{})
	var waits []time.Duration
	s.wait = func(_ context.Context, d time.Duration) bool {
		waits = append(waits, d)
		return true
	}
	s.LaunchBatch(context.Background(), batchAccounts(3), t.TempDir(), 0)

	// First launch is immediate. Each launch but the last is followed by a
	// settle wait; each launch but the first is preceded by the clamped delay.
	want := []time.Duration{settleDelay, MinLaunchDelay, settleDelay, MinLaunchDelay}
	if len(waits) != len(want) {
		t.Fatalf("waits %v, want %v", waits, want)
	}
	for i := range want {
		if waits[i] != want[i] {
			t.Fatalf("wait %d = %v, want %v", i, waits[i], want[i])
		}
	}
	if sink.errCount() != 3 {
		t.Fatalf("per-account failures must not stop the batch, got %d reports", sink.errCount())
	}
}

func TestLaunchBatchClampsConfiguredDelay(t *testing.T) {
	s := New(nil, Options{})
	var waits []time.Duration
	s.wait = func(_ context.Context, d time.Duration) bool {
		waits = append(waits, d)
		return true
	}
	s.LaunchBatch(context.Background(), batchAccounts(2), t.TempDir(), time.Hour)
	// settle after the first launch, then the clamped inter-launch delay.
	if len(waits) != 2 || waits[1] != MaxLaunchDelay {
		t.Fatalf("waits %v, want clamped delay %v", waits, MaxLaunchDelay)
	}
}

func TestLaunchBatchStopsWhenInterrupted(t *testing.T) {
	sink := &testSink{}
	s := New(sink, Options{})
	s.wait = func(context.Context, time.Duration) bool { return false }
	s.LaunchBatch(context.Background(), batchAccounts(3), t.TempDir(), 0)
	// Only the first launch runs; the settle wait reports the interrupt.
	if sink.errCount() != 1 {
		t.Fatalf("expected exactly one launch attempt, got %d", sink.errCount())
	}
}

func TestWaitForCancelledContext(t *testing.T) {
	s := New(nil, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if s.waitFor(ctx, time.Hour) {
		t.Fatal("cancelled context must interrupt the wait")
	}
}

func TestWaitForShutdown(t *testing.T) {
	s := New(nil, Options{})
	s.Shutdown()
	if s.waitFor(context.Background(), time.Hour) {
		t.Fatal("shutdown must interrupt the wait")
	}
}

func TestWaitForElapses(t *testing.T) {
	s := New(nil, Options{})
	if !s.waitFor(context.Background(), time.Millisecond) {
		t.Fatal("undisturbed wait must elapse")
	}
}
