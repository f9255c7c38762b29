package chunking

import (
	"strings"
	"unicode"
)

// splitSentences divides text into sentences. A sentence ends at a newline,
// or at sentence-ending punctuation followed by whitespace and an uppercase
// letter. Sentences are trimmed; empty ones are dropped.
func splitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	flush := func(end int) {
		s := strings.TrimSpace(string(runes[start:end]))
		if s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}

	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; {
		case r == '\n':
			flush(i)
		case r == '.' || r == '!' || r == '?':
			// Consume any run of closing punctuation
			j := i + 1
			for j < len(runes) && (runes[j] == '.' || runes[j] == '!' || runes[j] == '?') {
				j++
			}
			// A boundary needs trailing whitespace and then an uppercase letter
			k := j
			for k < len(runes) && unicode.IsSpace(runes[k]) && runes[k] != '\n' {
				k++
			}
			if k > j && k < len(runes) && unicode.IsUpper(runes[k]) {
				flush(j)
				i = j - 1
			} else {
				i = j - 1
			}
		}
	}
	flush(len(runes))

	return sentences
}

// splitBySentences groups groupSize sentences per chunk. A trailing group
// shorter than groupSize is kept.
func splitBySentences(text string, groupSize int) []Piece {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var pieces []Piece
	for i := 0; i < len(sentences); i += groupSize {
		end := i + groupSize
		if end > len(sentences) {
			end = len(sentences)
		}
		pieces = append(pieces, Piece{Text: strings.Join(sentences[i:end], " ")})
	}
	return pieces
}
