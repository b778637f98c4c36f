package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/chymrt/chym/util"
)

// JoinDefinition is the binding unit: a set of reactions sharing one
// soup and one mutex. Molecules are bound to exactly one
// JoinDefinition for their lifetime; Activate is the only way to
// create one.
type JoinDefinition struct {
	mu        sync.Mutex
	bag       *MoleculeBag
	reactions []*ReactionDescriptor
	rotation  int

	decisionPool Pool
	reactionPool Pool

	logLevel atomic.Int32
}

// Activate runs the StaticAnalyzer over reactions and, if it finds
// nothing fatal, binds every molecule the reactions consume as inputs
// to a new JoinDefinition backed by the given pools. Molecules that
// appear only in Outputs are not bound. decisionPool runs
// scheduling passes (Emit -> decide); reactionPool runs reaction
// bodies.
//
// A fatal analysis result (unavoidable indeterminism, unavoidable
// livelock) leaves every molecule unbound and returns a
// *StaticAnalysisError. Warnings (possible livelock, possible
// deadlock) are returned alongside a live JoinDefinition.
func Activate(reactions []*ReactionDescriptor, decisionPool, reactionPool Pool) (*JoinDefinition, *WarningsAndErrors, error) {
	wae, err := Analyze(reactions)
	if err != nil {
		return nil, wae, err
	}

	for _, r := range reactions {
		if len(r.Inputs) == 0 {
			return nil, wae, &ConfigurationError{Reaction: r.Name, Reason: "has no inputs"}
		}
		for _, in := range r.Inputs {
			if in.Matcher.Kind < Wildcard || in.Matcher.Kind > Arbitrary {
				return nil, wae, &ConfigurationError{Reaction: r.Name, Reason: "has a matcher of unknown kind"}
			}
		}
	}

	jd := &JoinDefinition{
		bag:       newMoleculeBag(),
		reactions: reactions,
	}
	jd.decisionPool = decisionPool
	jd.reactionPool = reactionPool

	bound := make([]MoleculeId, 0, len(reactions)*2)
	rollback := func() {
		for _, id := range bound {
			id.jdef.Store(nil)
		}
	}

	for _, r := range reactions {
		for _, in := range r.Inputs {
			if !in.Mol.jdef.CompareAndSwap(nil, jd) {
				if in.Mol.jdef.Load() == jd {
					continue // already bound by an earlier input of this batch
				}
				rollback()
				return nil, wae, &AlreadyBoundError{Name: in.Mol.name}
			}
			bound = append(bound, in.Mol)
		}
	}

	// Record which reactions consume which molecules in each
	// molecule's own handle, not just this JoinDefinition's reaction
	// list: detectDeadlock's cross-reaction check (core/analyzer.go)
	// needs to see a blocking molecule's consuming reaction even when
	// that reaction belongs to an earlier, already-activated
	// JoinDefinition.
	for _, r := range reactions {
		for _, in := range r.Inputs {
			in.Mol.registerConsumer(r)
		}
	}

	return jd, wae, nil
}

// SetLogLevel controls debug logging verbosity. Level 0 (the default)
// still logs errors: rejected pool submissions, reaction bodies that
// return an error, and blocking-protocol violations. Higher values log
// more (2 logs every emission). LogSoup is not affected.
func (jd *JoinDefinition) SetLogLevel(n int) {
	jd.logLevel.Store(int32(n))
}

func (jd *JoinDefinition) logf(level int, format string, args ...interface{}) {
	if int(jd.logLevel.Load()) >= level {
		util.Logf(format, args...)
	}
}

// emit inserts value for id and schedules a decision pass. slot is
// non-nil for a blocking molecule's emission.
func (jd *JoinDefinition) emit(id MoleculeId, value interface{}, slot *ReplySlot) error {
	jd.mu.Lock()
	jd.bag.insert(id, value, slot)
	jd.mu.Unlock()

	jd.logf(2, "chym: emitted %s", id.name)
	jd.scheduleDecision()
	return nil
}

// emitSync inserts value for id and, on the calling goroutine, drives
// the decision loop to quiescence (or up to maxSyncPasses, as a
// backstop against a possible-livelock reaction set) instead of
// scheduling an async decision pass. It is the zero-timeout blocking
// Emit's fast path: §8 requires "returns None iff no matching
// reaction can fire synchronously," which this implements literally
// by trying, right here, everything the emission could enable before
// giving up and settling slot to TimedOut.
func (jd *JoinDefinition) emitSync(id MoleculeId, value interface{}, slot *ReplySlot) error {
	jd.mu.Lock()
	jd.bag.insert(id, value, slot)
	jd.mu.Unlock()

	jd.logf(2, "chym: emitted %s (sync)", id.name)

	const maxSyncPasses = 1000
	for i := 0; i < maxSyncPasses; i++ {
		if state, _, _ := slot.snapshot(); state != slotPending {
			return nil
		}
		if !jd.tryFireOnce(jd.fireSync) {
			break
		}
	}

	slot.settle(slotTimedOut, nil, nil)
	return nil
}

func (jd *JoinDefinition) scheduleDecision() {
	err := jd.decisionPool.Submit(func() { jd.decide() })
	if err != nil {
		jd.logf(0, "chym: decision pool rejected submission: %v", err)
	}
}

// decide runs one scheduling pass on the decision pool.
func (jd *JoinDefinition) decide() {
	jd.tryFireOnce(jd.fire)
}

// tryFireOnce looks for the first reaction (starting from a rotating
// offset, for fairness across reactions) whose inputs currently all
// match, commits to one matched tuple, and hands it to execute — jd.fire
// for the normal async path, jd.fireSync for the zero-timeout
// synchronous fast path. At most one reaction fires per call; it
// reports whether one did.
func (jd *JoinDefinition) tryFireOnce(execute func(*ReactionDescriptor, Bindings, []consumedPick)) bool {
	jd.mu.Lock()

	n := len(jd.reactions)
	if n == 0 {
		jd.mu.Unlock()
		return false
	}

	start := jd.rotation % n
	for i := 0; i < n; i++ {
		r := jd.reactions[(start+i)%n]

		bs, picks, ok := tryMatchReaction(jd.bag, r)
		if !ok {
			continue
		}

		for _, p := range picks {
			jd.bag.removeEntry(p.mol, p.entry)
		}
		jd.rotation = (start + i + 1) % n
		jd.mu.Unlock()

		execute(r, bs, picks)
		return true
	}

	jd.mu.Unlock()
	return false
}

// replyHandlesFor builds the reply handles a matched reaction's body
// gets for the blocking molecules among picks, keyed by MoleculeId.
func (jd *JoinDefinition) replyHandlesFor(picks []consumedPick) (map[MoleculeId]*ReplyHandle, []*ReplyHandle) {
	replies := make(map[MoleculeId]*ReplyHandle, len(picks))
	handles := make([]*ReplyHandle, 0, len(picks))
	for _, p := range picks {
		if p.entry.slot == nil {
			continue
		}
		h := newReplyHandle(p.entry.slot)
		replies[p.mol] = h
		handles = append(handles, h)
	}
	return replies, handles
}

// fire submits a matched reaction's body to the reaction pool and,
// once it returns, reconciles the blocking inputs it consumed against
// how many times each was actually replied to.
func (jd *JoinDefinition) fire(r *ReactionDescriptor, bs Bindings, picks []consumedPick) {
	err := jd.reactionPool.Submit(func() {
		replies, handles := jd.replyHandlesFor(picks)

		ctx := WithReactionPool(context.Background(), jd.reactionPool)
		bodyErr := r.Body(ctx, bs, replies)
		if bodyErr != nil {
			jd.logf(0, "chym: reaction %q body returned error: %v", r.Name, bodyErr)
		}

		jd.reconcileReplies(r, picks, handles)
		jd.scheduleDecision()
	})
	if err != nil {
		jd.logf(0, "chym: reaction pool rejected submission for %q: %v", r.Name, err)
	}
}

// fireSync runs a matched reaction's body inline on the calling
// goroutine instead of submitting it to the reaction pool. It backs
// emitSync: everything else about firing (reply handles, reconciling
// the blocking protocol, scheduling a further pass) is identical to
// fire.
func (jd *JoinDefinition) fireSync(r *ReactionDescriptor, bs Bindings, picks []consumedPick) {
	replies, handles := jd.replyHandlesFor(picks)

	ctx := WithReactionPool(context.Background(), jd.reactionPool)
	bodyErr := r.Body(ctx, bs, replies)
	if bodyErr != nil {
		jd.logf(0, "chym: reaction %q body returned error: %v", r.Name, bodyErr)
	}

	jd.reconcileReplies(r, picks, handles)
	jd.scheduleDecision()
}

// reconcileReplies enforces the blocking protocol: every blocking
// input consumed by a reaction body must be replied to exactly once.
// Zero replies is a protocol fault; the body's own ErrReplyHandleStale
// return already covers a second call. On fault, Retry decides
// whether the consumed value is re-emitted for another reaction to
// try (FaultedWithRetry) or discarded with the blocked emitter failed
// (FaultedNoRetry).
func (jd *JoinDefinition) reconcileReplies(r *ReactionDescriptor, picks []consumedPick, handles []*ReplyHandle) {
	for _, h := range handles {
		// Marking the handle used here makes any later Reply through it
		// (after the body has returned) fail with ErrReplyHandleStale.
		if !h.used.CompareAndSwap(false, true) {
			continue
		}

		var mol MoleculeId
		var value interface{}
		for _, p := range picks {
			if p.entry.slot == h.slot {
				mol = p.mol
				value = p.entry.value
				break
			}
		}

		protoErr := &RuntimeProtocolError{Molecule: mol.name, Reason: "reaction body did not reply"}
		jd.logf(0, "chym: %v", protoErr)

		if r.Retry {
			jd.emit(mol, value, h.slot)
			continue
		}
		h.slot.settle(slotFailed, nil, protoErr)
	}
}

// joinSignature renders a reaction set the same way LogSoup names its
// JoinDefinition, as "Join{r1(sig1); r2(sig2); ...}". Analyze uses this
// to prefix its two fatal error kinds, so a shadowing or livelock
// error names the join it was found in even though no JoinDefinition
// value exists yet at the point Activate calls Analyze.
func joinSignature(reactions []*ReactionDescriptor) string {
	names := make([]string, 0, len(reactions))
	for _, r := range reactions {
		sig := make([]string, 0, len(r.Inputs))
		for _, in := range r.Inputs {
			sig = append(sig, in.Mol.name)
		}
		names = append(names, fmt.Sprintf("%s(%v)", r.Name, sig))
	}
	return "Join{" + joinStrings(names, "; ") + "}"
}

// LogSoup renders the current reaction set and pending-molecule
// counts, for diagnostics.
func (jd *JoinDefinition) LogSoup() string {
	jd.mu.Lock()
	defer jd.mu.Unlock()

	counts := jd.bag.soupCounts()
	lines := make([]string, 0, len(counts))
	for id, n := range counts {
		lines = append(lines, fmt.Sprintf("  %s: %d", id.name, n))
	}
	sort.Strings(lines)

	out := joinSignature(jd.reactions) + "\n"
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}

func joinStrings(xs []string, sep string) string {
	out := ""
	for i, x := range xs {
		if i > 0 {
			out += sep
		}
		out += x
	}
	return out
}
