// Package mock provides test doubles for the ai package interfaces.
//
// The mock embedder produces deterministic vectors derived from an FNV hash
// of the input text, so tests get stable similarity orderings without a
// network-bound provider.
package mock
