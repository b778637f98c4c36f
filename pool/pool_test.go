package pool

import (
	"sync"
	"testing"
	"time"

	"github.com/chymrt/chym/core"
)

func TestSubmitRunsTask(t *testing.T) {
	p := NewFixed(4)
	done := make(chan struct{})
	if err := p.Submit(func() { close(done) }); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
	p.Shutdown()
}

func TestSubmitRejectsAtCapacity(t *testing.T) {
	p := NewFixed(1)

	release := make(chan struct{})
	started := make(chan struct{})
	if err := p.Submit(func() {
		close(started)
		<-release
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-started

	if err := p.Submit(func() {}); err != core.ErrPoolRejected {
		t.Fatalf("Submit at capacity: got %v, want ErrPoolRejected", err)
	}

	close(release)
	p.Shutdown()
}

func TestMarkIdleGrowsBlockingAwarePool(t *testing.T) {
	p := NewBlockingAware(1)

	release := make(chan struct{})
	started := make(chan struct{})
	if err := p.Submit(func() {
		close(started)
		p.MarkIdle(func() { <-release })
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-started

	// The first worker is idle inside MarkIdle, so a blocking-aware
	// pool should have spare capacity for a second task even though
	// it was constructed with capacity 1.
	var wg sync.WaitGroup
	wg.Add(1)
	if err := p.Submit(func() { defer wg.Done() }); err != nil {
		t.Fatalf("Submit while peer idle: %v", err)
	}
	wg.Wait()

	close(release)
	p.Shutdown()
}

func TestFixedPoolMarkIdleDoesNotGrow(t *testing.T) {
	p := NewFixed(1)

	release := make(chan struct{})
	started := make(chan struct{})
	if err := p.Submit(func() {
		close(started)
		p.MarkIdle(func() { <-release })
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-started

	if err := p.Submit(func() {}); err != core.ErrPoolRejected {
		t.Fatalf("Submit while peer idle on fixed pool: got %v, want ErrPoolRejected", err)
	}

	close(release)
	p.Shutdown()
}
