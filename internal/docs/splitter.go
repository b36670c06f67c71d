package docs

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	defaultChunkSize    = 500
	defaultChunkOverlap = 100
)

// Chunk is one retrievable unit of documentation.
type Chunk struct {
	Source string
	Text   string
}

// Splitter cuts documents into overlapping chunks, preferring to break
// at markdown headings so a chunk stays within one topic.
type Splitter struct {
	ChunkSize int
	Overlap   int
	md        goldmark.Markdown
}

// NewSplitter creates a splitter with the default chunk geometry.
func NewSplitter() *Splitter {
	return &Splitter{
		ChunkSize: defaultChunkSize,
		Overlap:   defaultChunkOverlap,
		md:        goldmark.New(),
	}
}

// Split chunks one document.
func (s *Splitter) Split(doc Document) []Chunk {
	var chunks []Chunk
	for _, section := range s.sections([]byte(doc.Content)) {
		for _, piece := range s.window(section) {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			chunks = append(chunks, Chunk{Source: doc.Path, Text: piece})
		}
	}
	return chunks
}

// SplitAll chunks a set of documents in order.
func (s *Splitter) SplitAll(documents []Document) []Chunk {
	var chunks []Chunk
	for _, doc := range documents {
		chunks = append(chunks, s.Split(doc)...)
	}
	return chunks
}

// sections splits source text at heading boundaries found by the
// markdown parser.
func (s *Splitter) sections(src []byte) []string {
	root := s.md.Parser().Parse(text.NewReader(src))

	var boundaries []int
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		heading, ok := node.(*ast.Heading)
		if !ok || heading.Lines().Len() == 0 {
			continue
		}
		// Back up from the heading text to the start of its line so
		// the "##" marker stays with the section it opens.
		off := heading.Lines().At(0).Start
		for off > 0 && src[off-1] != '\n' {
			off--
		}
		if off > 0 {
			boundaries = append(boundaries, off)
		}
	}

	var sections []string
	prev := 0
	for _, b := range boundaries {
		if b > prev {
			sections = append(sections, string(src[prev:b]))
		}
		prev = b
	}
	if prev < len(src) {
		sections = append(sections, string(src[prev:]))
	}
	return sections
}

// window cuts a section into ChunkSize pieces with Overlap carryover,
// breaking at a blank line, newline, or space when one is near the cut.
func (s *Splitter) window(section string) []string {
	size, overlap := s.ChunkSize, s.Overlap
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = defaultChunkOverlap
	}

	if len(section) <= size {
		return []string{section}
	}

	var pieces []string
	start := 0
	for start < len(section) {
		end := start + size
		if end >= len(section) {
			pieces = append(pieces, section[start:])
			break
		}

		cut := end
		for _, sep := range []string{"\n\n", "\n", " "} {
			if idx := strings.LastIndex(section[start:end], sep); idx > 0 {
				cut = start + idx
				break
			}
		}

		pieces = append(pieces, section[start:cut])
		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return pieces
}
