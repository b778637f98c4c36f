// Package audit records activation diagnostics and terminal reaction
// faults to a BoltDB file for offline inspection, adapting the
// teacher's cmd/mservice/storage/bolt (which persists crew machine
// state) to an append-only audit trail instead — the engine's soup
// itself is never persisted.
package audit
