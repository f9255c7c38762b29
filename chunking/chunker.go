package chunking

import "strings"

// Piece is one ordered chunk produced by a strategy, before it is turned
// into a stored Chunk by the ingestion pipeline.
type Piece struct {
	Text    string
	Level   string // Hierarchy level, recursive strategy only
	Heading string // Originating markdown heading, recursive strategy only
}

// Split divides text into ordered pieces using one of the five pure
// strategies. Input that is empty after trimming yields a nil slice, not an
// error. StrategySemantic requires an embedding provider and must go through
// SplitSemantic; passing it here returns ErrEffectfulStrategy.
func Split(text string, strategy Strategy, opts Options) ([]Piece, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	opts = opts.normalized()

	switch strategy {
	case StrategyFixed:
		return splitFixed(text, opts.ChunkSize, opts.Overlap), nil
	case StrategySentence:
		return splitBySentences(text, opts.SentencesPerChunk), nil
	case StrategyParagraph:
		return splitParagraphs(text, opts.MinParagraphLength), nil
	case StrategySliding:
		return splitSliding(text, opts.ChunkSize, opts.Stride), nil
	case StrategyRecursive:
		return splitRecursive(text, opts.MaxChunkSize), nil
	case StrategySemantic:
		return nil, ErrEffectfulStrategy
	default:
		return nil, ErrUnknownStrategy
	}
}

// splitFixed slides a window of size runes forward by size-overlap.
// The last chunk may be shorter; iteration stops once the window reaches the
// end of the text.
func splitFixed(text string, size, overlap int) []Piece {
	runes := []rune(text)
	step := size - overlap
	var pieces []Piece
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end >= len(runes) {
			pieces = append(pieces, Piece{Text: string(runes[start:])})
			break
		}
		pieces = append(pieces, Piece{Text: string(runes[start:end])})
	}
	return pieces
}

// splitSliding produces overlapping windows of size runes stepped by stride.
// The final window is clipped to the text end.
func splitSliding(text string, size, stride int) []Piece {
	runes := []rune(text)
	var pieces []Piece
	for start := 0; start < len(runes); start += stride {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, Piece{Text: string(runes[start:end])})
		if end == len(runes) {
			break
		}
	}
	return pieces
}
