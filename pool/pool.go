package pool

import (
	"sync/atomic"

	concpool "github.com/sourcegraph/conc/pool"

	"github.com/chymrt/chym/core"
)

// Pool is a core.Pool. It bounds how many tasks may be in flight at
// once, failing a Submit immediately (per the "fail-fast, never
// silently drop" requirement) rather than queuing past that bound.
// Goroutines are spawned through conc, so a panicking task's panic
// propagates out of Shutdown's Wait instead of silently killing the
// pool.
type Pool struct {
	p *concpool.Pool

	inFlight atomic.Int64
	capacity atomic.Int64

	// blockingAware controls whether MarkIdle actually grows
	// capacity for its scope, or merely runs it. NewFixed and
	// NewBlockingAware are the only constructors; this field
	// distinguishes the two contracts from §4.6.
	blockingAware bool
}

// NewFixed makes a plain pool with a fixed capacity. Its MarkIdle
// does not grow capacity — a reaction pool built this way can starve
// if every worker blocks on an unsatisfied blocking molecule, exactly
// as §4.6 warns.
func NewFixed(size int) *Pool {
	p := &Pool{p: concpool.New()}
	p.capacity.Store(int64(size))
	return p
}

// NewBlockingAware makes a pool whose MarkIdle temporarily raises
// capacity by one for the duration of the scope, so a worker waiting
// on a ReplySlot (or doing synchronous I/O) doesn't consume a
// permanent slot of the pool's concurrency budget.
func NewBlockingAware(initial int) *Pool {
	p := NewFixed(initial)
	p.blockingAware = true
	return p
}

// Submit runs task asynchronously if the pool has spare capacity, or
// returns core.ErrPoolRejected immediately otherwise.
func (p *Pool) Submit(task func()) error {
	for {
		cur := p.inFlight.Load()
		if cur >= p.capacity.Load() {
			return core.ErrPoolRejected
		}
		if p.inFlight.CompareAndSwap(cur, cur+1) {
			break
		}
	}

	p.p.Go(func() {
		defer p.inFlight.Add(-1)
		task()
	})
	return nil
}

// MarkIdle runs scope, growing capacity by one for its duration if
// this is a blocking-aware pool.
func (p *Pool) MarkIdle(scope func()) {
	if p.blockingAware {
		p.capacity.Add(1)
		defer p.capacity.Add(-1)
	}
	scope()
}

// Shutdown stops accepting new work conceptually (callers should stop
// calling Submit) and waits for all in-flight tasks to drain,
// re-panicking if any task panicked — conc's pool.Pool.Wait
// propagates the first captured panic rather than losing it.
func (p *Pool) Shutdown() {
	p.p.Wait()
}

var _ core.Pool = (*Pool)(nil)
