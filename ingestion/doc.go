// Package ingestion provides pipeline orchestration for turning raw text
// into stored entries and embedded chunks.
//
// The Pipeline chunks the input with the requested strategy, embeds every
// chunk through a bounded worker pool (at most pool-size provider calls in
// flight), and persists the chunk batch followed by the owning entry. The
// whole operation is all-or-nothing: the first embedding failure aborts
// the ingestion before any write happens.
package ingestion
