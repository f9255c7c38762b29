package chunking

import "strings"

// section is a markdown header plus the text under it.
type section struct {
	heading string
	body    string
}

// splitRecursive splits text on markdown headers first, then within each
// oversize section on blank-line paragraphs, then within an oversize
// paragraph on sentence groups. It recurses only as deep as needed: anything
// already under maxSize is emitted as-is. Each piece carries the heading it
// originated under and the hierarchy level at which it was emitted.
func splitRecursive(text string, maxSize int) []Piece {
	var pieces []Piece
	for _, sec := range splitSections(text) {
		body := strings.TrimSpace(sec.body)
		if body == "" {
			continue
		}
		if len([]rune(body)) <= maxSize {
			pieces = append(pieces, Piece{Text: body, Level: LevelSection, Heading: sec.heading})
			continue
		}
		pieces = append(pieces, splitSectionParagraphs(sec.heading, body, maxSize)...)
	}
	return pieces
}

// splitSections divides text into header-delimited sections. Text before the
// first header forms a section with an empty heading.
func splitSections(text string) []section {
	lines := strings.Split(text, "\n")
	var sections []section
	current := section{}
	var body strings.Builder

	flush := func() {
		current.body = body.String()
		if strings.TrimSpace(current.body) != "" || current.heading != "" {
			sections = append(sections, current)
		}
		body.Reset()
	}

	for _, line := range lines {
		if isHeader(line) {
			flush()
			current = section{heading: strings.TrimSpace(strings.TrimLeft(line, "# "))}
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	flush()

	return sections
}

func isHeader(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return false
	}
	rest := strings.TrimLeft(trimmed, "#")
	return strings.HasPrefix(rest, " ") || rest == ""
}

func splitSectionParagraphs(heading, body string, maxSize int) []Piece {
	var pieces []Piece
	for _, paragraph := range blankLineRe.Split(body, -1) {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		if len([]rune(paragraph)) <= maxSize {
			pieces = append(pieces, Piece{Text: paragraph, Level: LevelParagraph, Heading: heading})
			continue
		}
		pieces = append(pieces, splitParagraphSentences(heading, paragraph, maxSize)...)
	}
	return pieces
}

// splitParagraphSentences packs consecutive sentences into chunks that stay
// under maxSize. A single sentence longer than maxSize is emitted whole;
// sentences are never split mid-way.
func splitParagraphSentences(heading, paragraph string, maxSize int) []Piece {
	var pieces []Piece
	var group strings.Builder

	flush := func() {
		if group.Len() > 0 {
			pieces = append(pieces, Piece{Text: group.String(), Level: LevelSentence, Heading: heading})
			group.Reset()
		}
	}

	for _, sentence := range splitSentences(paragraph) {
		if group.Len() > 0 && group.Len()+1+len(sentence) > maxSize {
			flush()
		}
		if group.Len() > 0 {
			group.WriteString(" ")
		}
		group.WriteString(sentence)
	}
	flush()

	return pieces
}
