package core

import (
	"slices"
	"time"
)

// Filter is an optional predicate over the non-vector chunk fields.
// A nil Filter matches everything; zero-valued fields are ignored.
// The same filter semantics apply to every retrieval method.
type Filter struct {
	Source      string    // Exact match
	Confidence  string    // Exact match
	ContentType string    // Exact match
	Tags        []string  // OR across listed tags
	After       time.Time // Inclusive lower bound on InsertedAt
	Before      time.Time // Inclusive upper bound on InsertedAt
}

// Matches reports whether the chunk satisfies the filter.
func (f *Filter) Matches(chunk *Chunk) bool {
	if f == nil {
		return true
	}
	if chunk == nil {
		return false
	}
	if f.Source != "" && chunk.Source != f.Source {
		return false
	}
	if f.Confidence != "" && chunk.Confidence != f.Confidence {
		return false
	}
	if f.ContentType != "" && chunk.ContentType != f.ContentType {
		return false
	}
	if len(f.Tags) > 0 {
		matched := false
		for _, tag := range f.Tags {
			if slices.Contains(chunk.Tags, tag) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if !f.After.IsZero() && chunk.InsertedAt.Before(f.After) {
		return false
	}
	if !f.Before.IsZero() && chunk.InsertedAt.After(f.Before) {
		return false
	}
	return true
}

// IsZero reports whether the filter constrains nothing.
func (f *Filter) IsZero() bool {
	return f == nil || (f.Source == "" && f.Confidence == "" && f.ContentType == "" &&
		len(f.Tags) == 0 && f.After.IsZero() && f.Before.IsZero())
}
