// Package config loads a declarative join definition — molecule
// declarations plus reaction descriptors, with guards and bodies
// given as core.ScriptSource rather than Go closures — from YAML,
// the same shape core.Spec is tagged for in the teacher this module
// is adapted from. Load resolves a JoinConfig into a Registry of
// runtime molecule handles plus a []*core.ReactionDescriptor ready
// for core.Activate.
package config
