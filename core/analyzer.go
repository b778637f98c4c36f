package core

import "fmt"

// WarningsAndErrors is what the StaticAnalyzer returns: Errors are
// fatal (Activate refuses to bind any molecule), Warnings are
// advisory (Activate still succeeds).
type WarningsAndErrors struct {
	Warnings []string
	Errors   []string
}

// Fatal reports whether any Errors were recorded.
func (w *WarningsAndErrors) Fatal() bool {
	return w != nil && len(w.Errors) > 0
}

func (w *WarningsAndErrors) addError(format string, args ...interface{}) {
	w.Errors = append(w.Errors, fmt.Sprintf(format, args...))
}

func (w *WarningsAndErrors) addWarning(format string, args ...interface{}) {
	w.Warnings = append(w.Warnings, fmt.Sprintf(format, args...))
}

// Analyze is the StaticAnalyzer: it inspects a reaction set before
// any molecule is bound and flags shadowing (unavoidable
// indeterminism), unavoidable livelock, possible livelock, and
// possible deadlock. A non-nil error is returned only when Errors is
// non-empty; Activate treats that as fatal.
func Analyze(reactions []*ReactionDescriptor) (*WarningsAndErrors, error) {
	wae := &WarningsAndErrors{}
	sig := joinSignature(reactions)

	detectShadowing(reactions, sig, wae)
	detectLivelock(reactions, sig, wae)
	detectDeadlock(reactions, wae)

	if wae.Fatal() {
		return wae, &StaticAnalysisError{Messages: wae.Errors}
	}
	return wae, nil
}

// molPattern indexes a reaction's inputs by molecule identity. A
// molecule consumed more than once by the same reaction (a
// self-join) is excluded from shadowing comparisons — comparing
// per-occurrence patterns for self-joins needs a pairing search this
// conservative check does not attempt.
func molPattern(r *ReactionDescriptor) (map[MoleculeId]Matcher, bool) {
	pat := make(map[MoleculeId]Matcher, len(r.Inputs))
	for _, in := range r.Inputs {
		if _, dup := pat[in.Mol]; dup {
			return nil, false
		}
		pat[in.Mol] = in.Matcher
	}
	return pat, true
}

// detectShadowing flags an ordered pair (general, specific) where
// general has no guard and, for every molecule general consumes,
// specific also consumes that same molecule with a matcher no
// stronger (weakerOrEqual) — general's molecule set need only be a
// multiset-subset of specific's, not equal to it, per §4.7's formal
// definition. Whenever specific's full pattern is satisfied, the
// weaker subset pattern general declares is necessarily satisfied
// too, so specific can never be the reaction that distinguishes
// itself from general: an unavoidable, fatal indeterminism.
func detectShadowing(reactions []*ReactionDescriptor, sig string, wae *WarningsAndErrors) {
	pats := make([]map[MoleculeId]Matcher, len(reactions))
	ok := make([]bool, len(reactions))
	for i, r := range reactions {
		pats[i], ok[i] = molPattern(r)
	}

	for i, general := range reactions {
		if !ok[i] || general.Guard != nil {
			continue
		}
		for j, specific := range reactions {
			if i == j || !ok[j] {
				continue
			}
			if shadows(pats[i], pats[j]) {
				wae.addError("In %s: Unavoidable indeterminism: reaction %s is shadowed by reaction %s",
					sig, specific.Name, general.Name)
			}
		}
	}
}

// shadows reports whether general's pattern is a multiset-subset of
// specific's: every molecule general consumes, specific also
// consumes, with a matcher no stronger than specific's.
func shadows(general, specific map[MoleculeId]Matcher) bool {
	if len(general) == 0 {
		return false
	}
	for id, gm := range general {
		sm, have := specific[id]
		if !have || !weakerOrEqual(gm, sm) {
			return false
		}
	}
	return true
}

// detectLivelock flags a reaction whose own declared Outputs cover
// every molecule it consumes (an input multiset-subset of the
// outputs, per §4.7 — not necessarily an exact match). Whether that's
// unavoidable or merely possible turns on matcher fallibility and
// guard presence, not on whether some other reaction could also
// consume one of the molecules: Wildcard/SimpleVar inputs are
// infallible, so with no guard the reaction re-enables itself on
// every firing regardless of what races it for the pending value —
// unavoidable livelock. A Constant or Arbitrary input, or any guard,
// means the reaction might fail to re-enable itself (the input value
// or guard could reject the very output it just produced), so it's
// downgraded to a possible-livelock warning.
func detectLivelock(reactions []*ReactionDescriptor, sig string, wae *WarningsAndErrors) {
	for _, r := range reactions {
		if len(r.Outputs) == 0 {
			continue
		}
		outputSet := make(map[MoleculeId]bool, len(r.Outputs))
		for _, o := range r.Outputs {
			outputSet[o] = true
		}

		reemitsAllInputs := true
		allInfallible := true
		for _, in := range r.Inputs {
			if !outputSet[in.Mol] {
				reemitsAllInputs = false
				break
			}
			if in.Matcher.Kind != Wildcard && in.Matcher.Kind != SimpleVar {
				allInfallible = false
			}
		}
		if !reemitsAllInputs {
			continue
		}

		if allInfallible && r.Guard == nil {
			wae.addError("In %s: Unavoidable livelock: reaction %s re-emits every molecule it consumes with no guard to ever stop it", sig, r.Name)
		} else {
			wae.addWarning("Possible livelock: reaction %s => %s", r.Name, outputNames(r.Outputs))
		}
	}
}

func outputNames(ids []MoleculeId) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.name
	}
	return joinStrings(names, ", ")
}

// detectDeadlock warns when a reaction's Outputs emit a blocking
// molecule B and, later in that same output sequence, emit a
// non-blocking molecule M that B's own consuming reaction also needs
// as an input. The reaction firing B's emitter blocks waiting for a
// reply before M is ever emitted; if B's consumer can't proceed
// without M, the two can deadlock. B's consumer may be a reaction in
// this same activation batch (not yet registered globally) or a
// reaction already bound to another, earlier-activated JoinDefinition
// (found via consumersOf, populated by Activate).
func detectDeadlock(reactions []*ReactionDescriptor, wae *WarningsAndErrors) {
	for _, r := range reactions {
		warned := make(map[MoleculeId]bool, len(r.Outputs))
		for i, out := range r.Outputs {
			if !IsBlocking(out) || warned[out] {
				continue
			}

			consuming := consumersOf(out)
			for _, other := range reactions {
				if other == r {
					continue
				}
				for _, in := range other.Inputs {
					if in.Mol == out {
						consuming = append(consuming, other)
						break
					}
				}
			}
			if len(consuming) == 0 {
				continue
			}

			for _, later := range r.Outputs[i+1:] {
				if IsBlocking(later) {
					continue
				}
				for _, rc := range consuming {
					needed := false
					for _, in := range rc.Inputs {
						if in.Mol == later {
							needed = true
							break
						}
					}
					if needed {
						wae.addWarning("Possible deadlock: molecule %s may deadlock due to outputs of %s", out.name, r.Name)
						warned[out] = true
						break
					}
				}
				if warned[out] {
					break
				}
			}
		}
	}
}
