package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type slotState int

const (
	slotPending slotState = iota
	slotReplied
	slotTimedOut
	slotFailed
)

// ReplySlot is the rendezvous point between a blocking emitter and
// the reaction that eventually consumes its molecule. It is a
// single-shot state machine: Pending moves to exactly one of
// Replied, TimedOut, or Failed, and never moves again.
type ReplySlot struct {
	mu    sync.Mutex
	state slotState
	value interface{}
	err   error
	ready chan struct{}

	replyCount int32
}

func newReplySlot() *ReplySlot {
	return &ReplySlot{ready: make(chan struct{})}
}

// settle moves the slot to a terminal state exactly once. Later
// calls are no-ops; the first writer wins.
func (s *ReplySlot) settle(state slotState, value interface{}, err error) bool {
	s.mu.Lock()
	if s.state != slotPending {
		s.mu.Unlock()
		return false
	}
	s.state = state
	s.value = value
	s.err = err
	s.mu.Unlock()
	close(s.ready)
	return true
}

func (s *ReplySlot) snapshot() (slotState, interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.value, s.err
}

// ReplyHandle is handed to a reaction body for the blocking molecule
// it consumed. Reply must be called exactly once; a second call
// returns ErrReplyHandleStale.
type ReplyHandle struct {
	slot *ReplySlot
	used atomic.Bool
}

func newReplyHandle(slot *ReplySlot) *ReplyHandle {
	return &ReplyHandle{slot: slot}
}

// Reply delivers value to the blocked emitter. Only the first call
// succeeds; it also increments the slot's reply counter. Nothing reads
// that counter: a second reply is caught by the handle itself, which
// returns ErrReplyHandleStale.
func (h *ReplyHandle) Reply(value interface{}) error {
	if !h.used.CompareAndSwap(false, true) {
		return ErrReplyHandleStale
	}
	atomic.AddInt32(&h.slot.replyCount, 1)
	h.slot.settle(slotReplied, value, nil)
	return nil
}

// replyOutcome is what BlockingCoordinator.Wait hands back to an
// Emit call.
type replyOutcome struct {
	state slotState
	value interface{}
	err   error
}

// BlockingCoordinator is the facade Emit uses to wait on a
// ReplySlot, honoring both a context.Context and a timeout
// Duration. It is stateless; it exists mainly so Wait's honoring of
// ctx-vs-timeout-vs-fail lives in one place rather than being
// duplicated by every blocking injector.
type BlockingCoordinator struct{}

var coordinator = &BlockingCoordinator{}

// Wait blocks until slot settles, ctx is done, or timeout elapses.
// timeout < 0 means no timeout — wait forever, subject only to ctx.
// (BlockingInjector.Emit never calls Wait with timeout == 0; that
// case is handled synchronously by JoinDefinition.emitSync before
// Wait would ever be reached.) A ctx cancellation or timeout races
// the reply: whichever happens first wins, and the slot is settled
// (to TimedOut on timeout, to Failed with ctx.Err() on cancellation)
// only if it was still Pending at that instant — so a reply
// that lands a moment later is simply discarded by the loser's settle
// call returning false.
func (c *BlockingCoordinator) Wait(ctx context.Context, slot *ReplySlot, timeout time.Duration) replyOutcome {
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case <-slot.ready:
		state, value, err := slot.snapshot()
		return replyOutcome{state: state, value: value, err: err}
	case <-timeoutCh:
		slot.settle(slotTimedOut, nil, nil)
		state, value, err := slot.snapshot()
		return replyOutcome{state: state, value: value, err: err}
	case <-ctx.Done():
		slot.settle(slotFailed, nil, ctx.Err())
		state, value, err := slot.snapshot()
		return replyOutcome{state: state, value: value, err: err}
	}
}

// replyFromSlot reads slot's already-settled state and converts it to
// the (reply, timedOut, err) shape BlockingInjector.Emit returns. Used
// by the zero-timeout fast path, where the slot is settled
// synchronously by JoinDefinition.emitSync rather than by Wait.
func replyFromSlot[R any](slot *ReplySlot) (R, bool, error) {
	var zero R
	state, value, err := slot.snapshot()
	switch state {
	case slotReplied:
		if v, ok := value.(R); ok {
			return v, false, nil
		}
		return zero, false, nil
	case slotTimedOut:
		return zero, true, nil
	default: // slotPending (shouldn't happen) or slotFailed
		return zero, false, err
	}
}
