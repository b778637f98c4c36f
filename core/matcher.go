package core

// consumedPick names one bag entry a reaction has tentatively (or
// finally) committed to taking for one of its inputs.
type consumedPick struct {
	mol   MoleculeId
	entry *bagEntry
}

// tryMatchReaction attempts to find one full tuple of pending values,
// one per r.Inputs, that structurally matches and passes r.Guard. It
// backtracks across candidate entries so that an early input picking
// a value that dooms the guard doesn't block a combination that
// would have worked. Candidate order within a molecule's entries
// comes from MoleculeBag.candidates, which is where input-level
// fairness comes from.
//
// Entries already picked for an earlier input (in this attempt) are
// never picked again, even when an input repeats the same molecule —
// self-joins consume distinct pending values.
func tryMatchReaction(bag *MoleculeBag, r *ReactionDescriptor) (Bindings, []consumedPick, bool) {
	used := make(map[*bagEntry]bool)
	picks := make([]consumedPick, 0, len(r.Inputs))

	var rec func(i int, bs Bindings) (Bindings, bool)
	rec = func(i int, bs Bindings) (Bindings, bool) {
		if i == len(r.Inputs) {
			if r.Guard != nil && !r.Guard(bs) {
				return bs, false
			}
			return bs, true
		}

		in := r.Inputs[i]
		for _, e := range bag.candidates(in.Mol) {
			if used[e] || !in.Matcher.Match(e.value) {
				continue
			}

			next := bs
			if in.Matcher.Var != "" {
				next = bs.Copy().Extend(in.Matcher.Var, e.value)
			}

			used[e] = true
			picks = append(picks, consumedPick{mol: in.Mol, entry: e})

			if final, ok := rec(i+1, next); ok {
				return final, true
			}

			picks = picks[:len(picks)-1]
			used[e] = false
		}
		return bs, false
	}

	final, ok := rec(0, NewBindings())
	if !ok {
		return nil, nil, false
	}
	return final, picks, true
}
