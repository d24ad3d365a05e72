// Package model provides the architecture model store consumed by the
// uncertainty analysis.
//
// The store is an explicit index from element id to a lightweight Element
// descriptor, plus a neighbor-query capability over a fixed set of relations
// (control flow, call edges, composition, allocation, interface binding).
// Reverse relations are materialized once at Build time; afterwards the store
// is immutable and safe for concurrent readers.
//
// The package also provides the two model-backed collaborators of an analysis
// run: a Finder that enumerates action sequences through the usage scenarios,
// and a Resolver that extracts characteristic literals from flow elements.
package model
