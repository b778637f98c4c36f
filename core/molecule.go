package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// moleculeHandle is the opaque identity behind a MoleculeId. Identity
// (pointer equality), not Name, is what the bag and matcher use.
type moleculeHandle struct {
	name     string
	blocking bool

	// jdef is set exactly once, at activation, by the single-binding
	// registry. After that, emission reads this pointer directly
	// instead of doing a global lookup on the hot path (see the
	// "Single-binding invariant" design note).
	jdef atomic.Pointer[JoinDefinition]

	// consumersMu/consumers record every reaction registered (at
	// Activate time) as consuming this molecule, regardless of which
	// JoinDefinition that reaction belongs to. detectDeadlock's
	// cross-reaction check reads this to see what an already-bound
	// blocking molecule's own consuming reaction needs, even when
	// that reaction was activated earlier as part of a different
	// JoinDefinition.
	consumersMu sync.Mutex
	consumers   []*ReactionDescriptor
}

// MoleculeId identifies a declared molecule for its lifetime.
type MoleculeId = *moleculeHandle

// Name returns the molecule's display name.
func Name(id MoleculeId) string { return id.name }

// IsBlocking reports whether id was declared with DeclareBlocking.
func IsBlocking(id MoleculeId) bool { return id.blocking }

func newMoleculeHandle(name string, blocking bool) MoleculeId {
	return &moleculeHandle{name: name, blocking: blocking}
}

// registerConsumer records r as consuming id. Called once per
// reaction input by Activate, after binding succeeds.
func (h *moleculeHandle) registerConsumer(r *ReactionDescriptor) {
	h.consumersMu.Lock()
	h.consumers = append(h.consumers, r)
	h.consumersMu.Unlock()
}

// consumersOf returns every reaction registered as consuming id.
func consumersOf(id MoleculeId) []*ReactionDescriptor {
	id.consumersMu.Lock()
	defer id.consumersMu.Unlock()
	out := make([]*ReactionDescriptor, len(id.consumers))
	copy(out, id.consumers)
	return out
}

// Injector is the handle returned by DeclareNonBlocking. Calling
// Emit delivers a value into the soup of whichever JoinDefinition the
// molecule is bound to.
type Injector[T any] struct {
	id MoleculeId
}

// DeclareNonBlocking declares a non-blocking molecule carrying values
// of type T.
func DeclareNonBlocking[T any](name string) *Injector[T] {
	return &Injector[T]{id: newMoleculeHandle(name, false)}
}

// Id returns the molecule identity, for use in reaction input patterns.
func (inj *Injector[T]) Id() MoleculeId { return inj.id }

// Emit inserts value into the soup and returns immediately. It
// returns NotBoundError if no JoinDefinition has bound this molecule
// yet.
func (inj *Injector[T]) Emit(value T) error {
	jdef := inj.id.jdef.Load()
	if jdef == nil {
		return &NotBoundError{Name: inj.id.name}
	}
	return jdef.emit(inj.id, value, nil)
}

// BlockingInjector is the handle returned by DeclareBlocking. Calling
// Emit suspends the caller until the consuming reaction replies, the
// timeout elapses, or the protocol is violated.
type BlockingInjector[T any, R any] struct {
	id MoleculeId
}

// DeclareBlocking declares a blocking molecule carrying a value of
// type T and expecting a reply of type R.
func DeclareBlocking[T any, R any](name string) *BlockingInjector[T, R] {
	return &BlockingInjector[T, R]{id: newMoleculeHandle(name, true)}
}

// Id returns the molecule identity, for use in reaction input patterns.
func (inj *BlockingInjector[T, R]) Id() MoleculeId { return inj.id }

// Emit inserts value into the soup, then blocks until reply, timeout,
// or protocol failure.
//
// timeout == 0 tries synchronously: the emission's decision pass runs
// on the calling goroutine instead of a pool, and Emit returns
// immediately with timedOut == true unless one of the reactions it
// enables (possibly transitively) replies to this molecule right
// there — the §8 boundary property "returns None iff no matching
// reaction can fire synchronously." timeout < 0 waits forever
// (subject to ctx). timeout > 0 waits up to that long.
//
// If Emit is called from within a reaction body (the common case for
// a reaction that itself emits a blocking molecule), the wait runs
// inside the reaction pool's MarkIdle scope so the pool can grow
// around it per §4.6/§5 — this requires the ctx passed to the
// reaction body's Body func, which carries the pool via
// WithReactionPool.
func (inj *BlockingInjector[T, R]) Emit(ctx context.Context, value T, timeout time.Duration) (reply R, timedOut bool, err error) {
	var zero R

	jdef := inj.id.jdef.Load()
	if jdef == nil {
		return zero, false, &NotBoundError{Name: inj.id.name}
	}

	slot := newReplySlot()

	if timeout == 0 {
		if err := jdef.emitSync(inj.id, value, slot); err != nil {
			return zero, false, err
		}
		return replyFromSlot[R](slot)
	}

	if err := jdef.emit(inj.id, value, slot); err != nil {
		return zero, false, err
	}

	var outcome replyOutcome
	waitFn := func() { outcome = coordinator.Wait(ctx, slot, timeout) }
	if p, ok := poolFromContext(ctx); ok {
		p.MarkIdle(waitFn)
	} else {
		waitFn()
	}

	switch outcome.state {
	case slotReplied:
		if v, ok := outcome.value.(R); ok {
			return v, false, nil
		}
		return zero, false, nil
	case slotTimedOut:
		return zero, true, nil
	default: // slotFailed
		return zero, false, outcome.err
	}
}
