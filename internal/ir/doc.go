// Package ir provides the foundational types of the uncertainty impact analysis.
//
// This package contains type definitions and small pure helpers only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// analysis vocabulary (elements, categories, sources, impacts, sequences)
// free of any dependency on how architectures are stored or traces are found.
//
// Key design constraints:
//   - ElementID carries no semantics beyond equality and lookup
//   - Category is a closed set; Unclassified is the explicit inert case
//   - ActionSequence equality for deduplication is structural (ids in order)
//   - Literal names are NFC-normalized at every comparison boundary
package ir
