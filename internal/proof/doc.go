// Package proof is the typed view of one checker report: sources, library
// objects in declaration order, proof trees stored as an arena of nodes, and
// the per-object and per-node span metadata.
//
// A Library is built once by Decode and never mutated afterwards; a new
// check produces a new Library.
package proof
