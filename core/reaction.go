package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// MatcherKind is the shape of a single input pattern.
type MatcherKind int

const (
	// Wildcard matches any pending value and binds nothing. It is
	// the weakest pattern: it matches everything a SimpleVar,
	// Constant, or Arbitrary pattern would.
	Wildcard MatcherKind = iota

	// SimpleVar matches any pending value and binds it to Var in
	// the reaction's Bindings.
	SimpleVar

	// Constant matches only a value equal (==) to Value.
	Constant

	// Arbitrary matches only values for which Predicate returns
	// true, and (if Var is non-empty) binds the value to Var.
	Arbitrary
)

// Matcher describes how one reaction input selects among the pending
// values of its molecule.
type Matcher struct {
	Kind      MatcherKind
	Var       string                 // SimpleVar, Arbitrary (optional)
	Value     interface{}            // Constant
	Predicate func(interface{}) bool // Arbitrary
}

// Match reports whether value satisfies this pattern.
func (m Matcher) Match(value interface{}) bool {
	switch m.Kind {
	case Wildcard, SimpleVar:
		return true
	case Constant:
		return m.Value == value
	case Arbitrary:
		return m.Predicate != nil && m.Predicate(value)
	default:
		return false
	}
}

// weakerOrEqual reports whether pattern a matches at least every
// value pattern b matches, i.e. a can never be the thing that makes
// two reactions distinguishable. Wildcard is weakest; Constant and
// Arbitrary (an opaque predicate) are both treated as maximally
// specific since neither can be proven to subsume the other without
// evaluating arbitrary code — this is the StaticAnalyzer's
// conservative fallback per the shadowing-detection design note.
func weakerOrEqual(a, b Matcher) bool {
	rank := func(m Matcher) int {
		switch m.Kind {
		case Wildcard:
			return 2
		case SimpleVar:
			return 1
		default: // Constant, Arbitrary
			return 0
		}
	}
	if ra, rb := rank(a), rank(b); ra != rb {
		return ra > rb
	}
	switch a.Kind {
	case Wildcard, SimpleVar:
		return true
	case Constant:
		return b.Kind == Constant && a.Value == b.Value
	default: // Arbitrary predicates cannot be compared
		return false
	}
}

// Input pairs one reaction slot with the molecule it draws from and
// the pattern it applies to candidate values.
type Input struct {
	Mol     *moleculeHandle
	Matcher Matcher
}

// GuardFunc runs after all of a reaction's inputs have structurally
// matched, to accept or reject the candidate tuple without consuming
// it. A nil GuardFunc always accepts.
type GuardFunc func(bs Bindings) bool

// BodyFunc runs once a reaction has committed to a tuple of inputs.
// replies holds a ReplyHandle for each blocking input, keyed by the
// input's MoleculeId, so the body can reply to exactly the blocking
// molecules it consumed.
type BodyFunc func(ctx context.Context, bs Bindings, replies map[*moleculeHandle]*ReplyHandle) error

// ReactionDescriptor is one reaction rule: consume Inputs (subject to
// Guard), run Body, optionally emit Outputs as a documentation hint
// for the StaticAnalyzer's livelock and possible-deadlock checks.
type ReactionDescriptor struct {
	Name string
	Doc  string

	Inputs []Input
	Guard  GuardFunc
	Body   BodyFunc

	// Outputs names the molecules Body may emit, used by the livelock
	// and possible-deadlock checks (and by docgen) — it is advisory,
	// not enforced.
	Outputs []*moleculeHandle

	// Retry tells the JoinDefinition what to do if Body returns
	// without every blocking input having been replied to exactly
	// once: true re-emits the offending molecules (FaultedWithRetry),
	// false discards them and logs a RuntimeProtocolError
	// (FaultedNoRetry).
	Retry bool

	hash string
}

// NewReaction builds a ReactionDescriptor and precomputes its content
// hash (name plus input molecules and matchers). The hash is stored on
// the descriptor; the StaticAnalyzer does not read it.
func NewReaction(name string, inputs []Input, guard GuardFunc, body BodyFunc, outputs ...MoleculeId) *ReactionDescriptor {
	r := &ReactionDescriptor{
		Name:    name,
		Inputs:  inputs,
		Guard:   guard,
		Body:    body,
		Outputs: outputs,
	}
	r.hash = contentHash(r)
	return r
}

func contentHash(r *ReactionDescriptor) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s", r.Name)
	for _, in := range r.Inputs {
		fmt.Fprintf(h, "|%p:%d:%s:%v", in.Mol, in.Matcher.Kind, in.Matcher.Var, in.Matcher.Value)
	}
	return hex.EncodeToString(h.Sum(nil))
}
