// Package core provides the chemical-machine runtime: a Join Calculus
// engine built around typed molecules, multiset-matching reactions, and
// a join definition that owns a soup of pending molecule values.
//
// Callers declare molecules with DeclareNonBlocking or DeclareBlocking,
// describe reactions with NewReaction, and Activate a set of reactions
// against a pair of pools (one for scheduling decisions, one for
// reaction bodies). Activation runs the StaticAnalyzer and refuses to
// start if the reaction set is statically unsound.
//
// See https://en.wikipedia.org/wiki/Join-calculus for the underlying
// model.
package core
