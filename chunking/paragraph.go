package chunking

import (
	"regexp"
	"strings"
)

var blankLineRe = regexp.MustCompile(`\n[ \t]*\n`)

// splitParagraphs splits on blank lines, merging consecutive short
// paragraphs into a running buffer. The buffer is flushed once it would
// exceed minLen*10. Pure-whitespace paragraphs never produce a chunk.
func splitParagraphs(text string, minLen int) []Piece {
	paragraphs := blankLineRe.Split(text, -1)

	var pieces []Piece
	var buffer strings.Builder

	flush := func() {
		if buffer.Len() > 0 {
			pieces = append(pieces, Piece{Text: buffer.String()})
			buffer.Reset()
		}
	}

	maxBuffer := minLen * 10
	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		short := len([]rune(paragraph)) < minLen || buffer.Len() < minLen
		if buffer.Len() == 0 {
			buffer.WriteString(paragraph)
			continue
		}
		if short && buffer.Len()+len(paragraph) <= maxBuffer {
			buffer.WriteString("\n\n")
			buffer.WriteString(paragraph)
			continue
		}
		flush()
		buffer.WriteString(paragraph)
	}
	flush()

	return pieces
}
