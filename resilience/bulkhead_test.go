package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// occupy takes n slots of b until the returned release func is called.
func occupy(t *testing.T, b *Bulkhead, n int) func() {
	t.Helper()
	hold := make(chan struct{})
	var started, done sync.WaitGroup
	for i := 0; i < n; i++ {
		started.Add(1)
		done.Add(1)
		go func() {
			defer done.Done()
			_ = b.Execute(context.Background(), func() error {
				started.Done()
				<-hold
				return nil
			})
		}()
	}
	started.Wait()
	return func() {
		close(hold)
		done.Wait()
	}
}

func TestBulkhead_AllowsCallsWithinLimit(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{Name: "test", MaxConcurrent: 3})
	release := occupy(t, b, 3)
	if b.InUse() != 3 || !b.Full() {
		t.Errorf("expected 3 slots in use and full, got %d", b.InUse())
	}
	release()
	if b.InUse() != 0 {
		t.Errorf("expected slots released, got %d", b.InUse())
	}
}

func TestBulkhead_RejectsWhenFull(t *testing.T) {
	var rejected atomic.Value
	b := NewBulkhead(BulkheadConfig{
		Name:          "launcher",
		MaxConcurrent: 1,
		OnReject:      func(name string, err error) { rejected.Store(name + ": " + err.Error()) },
	})
	release := occupy(t, b, 1)
	defer release()

	called := false
	err := b.Execute(context.Background(), func() error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrBulkheadFull) {
		t.Fatalf("expected ErrBulkheadFull, got %v", err)
	}
	if called {
		t.Error("fn must not run when rejected")
	}
	if rejected.Load() != "launcher: bulkhead is full" {
		t.Errorf("unexpected OnReject call: %v", rejected.Load())
	}
}

func TestBulkhead_WaitTimeout(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: 20 * time.Millisecond})
	release := occupy(t, b, 1)
	defer release()

	err := b.Execute(context.Background(), func() error { return nil })
	if !errors.Is(err, ErrBulkheadTimeout) {
		t.Fatalf("expected ErrBulkheadTimeout, got %v", err)
	}
}

func TestBulkhead_WaitGetsFreedSlot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: 5 * time.Second})
	release := occupy(t, b, 1)
	time.AfterFunc(20*time.Millisecond, release)

	if err := b.Execute(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("expected the freed slot, got %v", err)
	}
}

func TestBulkhead_ContextCanceledWhileWaiting(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: 5 * time.Second})
	release := occupy(t, b, 1)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Execute(ctx, func() error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBulkhead_PropagatesError(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 2})
	boom := errors.New("boom")
	if err := b.Execute(context.Background(), func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if b.InUse() != 0 {
		t.Error("slot must be released after an error")
	}
}

func TestBulkhead_NilIsUnlimited(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 0})
	if b != nil {
		t.Fatal("expected nil bulkhead for MaxConcurrent 0")
	}
	got, err := ExecuteWithResult(b, context.Background(), func() (int, error) { return 42, nil })
	if err != nil || got != 42 {
		t.Fatalf("expected 42, got %d, %v", got, err)
	}
	if b.InUse() != 0 || b.MaxConcurrent() != 0 || b.Full() {
		t.Error("nil bulkhead reports no usage")
	}
}
