// Package pool implements core.Pool on top of conc's goroutine pool,
// giving the engine both roles the ThreadPoolContract calls for: a
// fixed-size pool for plain decision passes, and a blocking-aware
// pool that temporarily raises its effective capacity while a worker
// is inside a MarkIdle scope (a blocking Emit, or user code wrapping
// synchronous I/O).
package pool
