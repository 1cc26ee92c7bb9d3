package chunk

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	DefaultChunkSize    = 1500
	DefaultChunkOverlap = 250
)

// DefaultSeparators lists boundary levels from most to least preferred:
// paragraphs, lines, sentence ends, words.
var DefaultSeparators = [][]string{
	{"\n\n"},
	{"\n"},
	{". ", "! ", "? "},
	{" "},
}

// Span is a half-open range of code point offsets.
type Span struct {
	Start int
	End   int
}

// Spanner is a splitter that can report where each chunk came from.
type Spanner interface {
	textsplitter.TextSplitter
	Spans(text string) []Span
}

// RecursiveSplitter splits text into chunks of at most ChunkSize code points,
// preferring to break at the highest-priority boundary available.
type RecursiveSplitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separators   [][]string
}

var _ Spanner = (*RecursiveSplitter)(nil)

// SplitterOption configures a RecursiveSplitter.
type SplitterOption func(*RecursiveSplitter)

// WithChunkSize sets the maximum chunk length in code points.
func WithChunkSize(size int) SplitterOption {
	return func(s *RecursiveSplitter) {
		s.ChunkSize = size
	}
}

// WithChunkOverlap sets the overlap between neighboring chunks.
func WithChunkOverlap(overlap int) SplitterOption {
	return func(s *RecursiveSplitter) {
		s.ChunkOverlap = overlap
	}
}

// WithSeparators replaces the boundary hierarchy.
func WithSeparators(levels ...[]string) SplitterOption {
	return func(s *RecursiveSplitter) {
		s.Separators = levels
	}
}

// NewRecursiveSplitter creates a splitter with 1500/250 defaults.
func NewRecursiveSplitter(opts ...SplitterOption) (*RecursiveSplitter, error) {
	s := &RecursiveSplitter{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		Separators:   DefaultSeparators,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ChunkSize <= 0 || s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		return nil, fmt.Errorf("%w: size %d, overlap %d", ErrInvalidChunkSize, s.ChunkSize, s.ChunkOverlap)
	}
	return s, nil
}

// SplitText implements textsplitter.TextSplitter. Whitespace-only chunks
// are dropped.
func (s *RecursiveSplitter) SplitText(text string) ([]string, error) {
	if s.ChunkSize <= 0 || s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		return nil, fmt.Errorf("%w: size %d, overlap %d", ErrInvalidChunkSize, s.ChunkSize, s.ChunkOverlap)
	}
	runes := []rune(text)
	var chunks []string
	for _, span := range s.spans(runes) {
		chunk := string(runes[span.Start:span.End])
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// Spans returns the chunk ranges of text in code points.
//
// Each chunk ends at the latest boundary of the best level found in
// (start+overlap, start+size], or is cut hard at start+size. The next chunk
// starts overlap code points before the previous end, moved forward to the
// next word start when one exists before that end.
func (s *RecursiveSplitter) Spans(text string) []Span {
	return s.spans([]rune(text))
}

func (s *RecursiveSplitter) spans(runes []rune) []Span {
	n := len(runes)
	if n == 0 {
		return nil
	}

	var spans []Span
	start := 0
	for start < n {
		if n-start <= s.ChunkSize {
			spans = append(spans, Span{Start: start, End: n})
			break
		}

		end := s.boundary(runes, start+s.ChunkOverlap, start+s.ChunkSize)
		spans = append(spans, Span{Start: start, End: end})

		next := end - s.ChunkOverlap
		for i := next; i < end; i++ {
			if isWordStart(runes, i) {
				next = i
				break
			}
		}
		start = next
	}
	return spans
}

// boundary finds the chunk end in (lo, hi].
func (s *RecursiveSplitter) boundary(runes []rune, lo, hi int) int {
	for _, level := range s.Separators {
		for pos := hi; pos > lo; pos-- {
			for _, sep := range level {
				if endsWith(runes, pos, sep) {
					return pos
				}
			}
		}
	}
	return hi
}

func endsWith(runes []rune, pos int, sep string) bool {
	sr := []rune(sep)
	if len(sr) == 0 || pos < len(sr) {
		return false
	}
	for i, r := range sr {
		if runes[pos-len(sr)+i] != r {
			return false
		}
	}
	return true
}

func isWordStart(runes []rune, i int) bool {
	if unicode.IsSpace(runes[i]) {
		return false
	}
	return i == 0 || unicode.IsSpace(runes[i-1])
}
