// Package chym implements a chemical-machine (Join Calculus)
// concurrency runtime: declare molecules and reactions, activate a
// join definition, emit molecules, and let the engine find and run
// enabled reactions on a worker pool.
//
// The runtime itself lives in package core. Packages pool, config,
// transport, audit, and docgen are ambient collaborators: worker
// pools, declarative YAML loading, I/O bridges, an audit trail, and
// HTML doc rendering, respectively. cmd/chym is a small CLI that
// wires them together.
package chym
