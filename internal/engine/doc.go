// Package engine implements uncertainty impact analysis.
//
// A run flows through five stages, each producing an immutable value for the
// next:
//
//  1. Classify: Classifier resolves element ids to categories (one store
//     lookup per id, memoized for the run).
//  2. Register: Registry turns the affected entities of each assumption into
//     uncertainty sources; unclassifiable ids are skipped, not errors.
//  3. Propagate: Propagator applies the category rule of each source and
//     emits one impact per (source, affected element).
//  4. Collect: Collect marks every candidate sequence touching an affected
//     element and derives the distinct impact set.
//  5. Evaluate: the confidentiality evaluator reports the violating elements
//     of each sequence.
//
// Analysis.Run drives the stages. Nothing is shared between runs except the
// read-only model store, so a run may be abandoned between stages (context
// cancellation) without cleanup.
//
// DETERMINISM:
// Sources keep registration order, impacts keep source order, and sequences
// keep their candidate index. Parallel propagation (WithParallel) produces
// the same output as sequential propagation.
package engine
