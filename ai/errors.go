package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnavailable indicates the embedding provider could not be reached
	// or returned a transport-level failure.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrDimensionMismatch indicates a returned vector's length differs from the
	// configured embedding dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// CheckDimension verifies that every vector has the expected length.
// A non-positive expected dimension disables the check.
func CheckDimension(vectors [][]float32, expected int) error {
	if expected <= 0 {
		return nil
	}
	for i, vector := range vectors {
		if len(vector) != expected {
			return fmt.Errorf("%w: vector %d has dimension %d, expected %d",
				ErrDimensionMismatch, i, len(vector), expected)
		}
	}
	return nil
}
