package core

import "context"

// Pool is the ThreadPoolContract: the interface a JoinDefinition
// submits work to. The decision pool runs scheduling passes; the
// reaction pool runs reaction bodies.
//
// Implementations live in package pool. Pool must fail fast (and log)
// rather than silently dropping a submission when its queue is
// bounded and full.
type Pool interface {
	// Submit runs task asynchronously. It returns ErrPoolRejected
	// if the pool cannot accept more work right now.
	Submit(task func()) error

	// MarkIdle runs scope while telling the pool that the calling
	// worker is not doing CPU work (e.g. it is blocked waiting on a
	// ReplySlot, or doing synchronous I/O). A blocking-aware pool
	// uses this to grow its effective worker count for the
	// duration of scope, so that one goroutine waiting on a reply
	// doesn't starve the rest of the pool.
	MarkIdle(scope func())

	// Shutdown stops accepting new work. Already-submitted tasks
	// may still be allowed to drain; implementations document their
	// own policy.
	Shutdown()
}

// reactionPoolKey is the context key JoinDefinition.fire/fireSync use
// to tell a reaction body which reaction pool it is occupying a
// worker slot on, so a blocking Emit from inside that body can
// MarkIdle the same pool for the duration of its wait (see §4.6/§5's
// requirement that a blocking-aware reaction pool grow around such a
// wait).
type reactionPoolKey struct{}

// WithReactionPool attaches p to ctx as the pool the calling code is
// running on. JoinDefinition wraps every reaction body invocation
// with this; a BlockingInjector.Emit called from within a reaction
// body picks it up automatically.
func WithReactionPool(ctx context.Context, p Pool) context.Context {
	return context.WithValue(ctx, reactionPoolKey{}, p)
}

// poolFromContext returns the pool WithReactionPool attached to ctx,
// if any. An Emit called from outside any reaction body (a top-level
// caller's own goroutine, not a pool worker) has none, and simply
// waits without marking anything idle — there is no pool worker slot
// to free up.
func poolFromContext(ctx context.Context) (Pool, bool) {
	p, ok := ctx.Value(reactionPoolKey{}).(Pool)
	return p, ok
}
