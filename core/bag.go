package core

import "math/rand"

// bagEntry is one pending molecule value sitting in the soup. slot
// is nil for non-blocking molecules.
type bagEntry struct {
	value interface{}
	slot  *ReplySlot
}

// MoleculeBag is the soup: the multiset of pending molecule values
// indexed by molecule identity. It is not itself safe for concurrent
// use — a JoinDefinition guards all access with its single mutex, per
// the "one lock per join definition" design.
type MoleculeBag struct {
	items map[MoleculeId][]*bagEntry
}

func newMoleculeBag() *MoleculeBag {
	return &MoleculeBag{items: make(map[MoleculeId][]*bagEntry)}
}

// insert adds a pending value for id.
func (b *MoleculeBag) insert(id MoleculeId, value interface{}, slot *ReplySlot) {
	b.items[id] = append(b.items[id], &bagEntry{value: value, slot: slot})
}

// count returns how many pending values id currently has.
func (b *MoleculeBag) count(id MoleculeId) int {
	return len(b.items[id])
}

// candidates returns id's pending entries in a randomized order, so
// that repeated scheduling passes don't always prefer the
// longest-waiting (or always the newest) value when several would
// match. This is the bag's half of fairness; the other half is the
// JoinDefinition's rotation over which reaction gets first refusal.
func (b *MoleculeBag) candidates(id MoleculeId) []*bagEntry {
	entries := b.items[id]
	if len(entries) < 2 {
		return entries
	}
	shuffled := make([]*bagEntry, len(entries))
	copy(shuffled, entries)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// removeEntry deletes one specific entry (by pointer identity) from
// id's list, used once a reaction has committed to consuming it.
func (b *MoleculeBag) removeEntry(id MoleculeId, target *bagEntry) {
	entries := b.items[id]
	for i, e := range entries {
		if e == target {
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(entries) == 0 {
		delete(b.items, id)
	} else {
		b.items[id] = entries
	}
}

// soupCounts is a stable snapshot of how many values are pending per
// molecule, for LogSoup and diagnostics.
func (b *MoleculeBag) soupCounts() map[MoleculeId]int {
	out := make(map[MoleculeId]int, len(b.items))
	for id, entries := range b.items {
		out[id] = len(entries)
	}
	return out
}
