package core

// These errors are user errors (bad reaction sets, bad runtime
// protocol use), not internal errors.

import "errors"

// NotBoundError occurs when a molecule is emitted before any
// JoinDefinition has been activated for it.
type NotBoundError struct {
	Name string
}

func (e *NotBoundError) Error() string {
	return `molecule "` + e.Name + `" not bound to any join definition`
}

// AlreadyBoundError occurs when Activate is given reactions that
// reference a molecule already bound to another JoinDefinition.
type AlreadyBoundError struct {
	Name string
}

func (e *AlreadyBoundError) Error() string {
	return `molecule "` + e.Name + `" already bound to a join definition`
}

// ConfigurationError occurs when a reaction set is malformed in a way
// that's cheap to detect: a reaction with no inputs, or an input whose
// matcher has an unknown kind. Every reaction needs at least one
// input; there are no input-less singleton reactions. Every blocking
// input automatically gets a ReplyHandle, so there is no separate
// reply-binder check.
type ConfigurationError struct {
	Reaction string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return `reaction "` + e.Reaction + `": ` + e.Reason
}

// StaticAnalysisError wraps a fatal StaticAnalyzer finding
// (unavoidable indeterminism or unavoidable livelock). Activation
// throws this and leaves no molecule bound.
type StaticAnalysisError struct {
	Messages []string
}

func (e *StaticAnalysisError) Error() string {
	msg := ""
	for i, m := range e.Messages {
		if i > 0 {
			msg += "; "
		}
		msg += m
	}
	return msg
}

// RuntimeProtocolError occurs when a blocking molecule's consuming
// reaction returns without replying. Unless the reaction has Retry
// set, the blocking emitter is unblocked with this error. A second
// reply does not produce this error: the emitter already holds the
// first reply, and the second call gets ErrReplyHandleStale.
type RuntimeProtocolError struct {
	Molecule string
	Reason   string
}

func (e *RuntimeProtocolError) Error() string {
	return `protocol violation for blocking molecule "` + e.Molecule + `": ` + e.Reason
}

// ErrReplyHandleStale is returned by ReplyHandle.Reply when the
// handle has already been used, or is used after its reaction body
// has returned (a "stale handle" per the blocking-via-reply design
// notes).
var ErrReplyHandleStale = errors.New("reply handle already used or stale")

// ErrPoolRejected is returned when a pool's bounded queue is full.
// The core never silently drops a submission.
var ErrPoolRejected = errors.New("pool rejected submission")
