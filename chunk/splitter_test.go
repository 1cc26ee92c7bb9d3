package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultSplitter(t *testing.T) *RecursiveSplitter {
	t.Helper()
	s, err := NewRecursiveSplitter()
	require.NoError(t, err)
	return s
}

// assertCoverage checks that spans tile text in order with bounded size
// and overlap.
func assertCoverage(t *testing.T, s *RecursiveSplitter, text string, spans []Span) {
	t.Helper()
	runes := []rune(text)
	require.NotEmpty(t, spans)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, len(runes), spans[len(spans)-1].End)

	var rebuilt strings.Builder
	prevEnd := 0
	for i, span := range spans {
		assert.LessOrEqual(t, span.End-span.Start, s.ChunkSize, "span %d too large", i)
		if i > 0 {
			assert.Greater(t, span.Start, spans[i-1].Start, "span %d does not advance", i)
			assert.LessOrEqual(t, span.Start, prevEnd, "gap before span %d", i)
			assert.LessOrEqual(t, prevEnd-span.Start, s.ChunkOverlap, "span %d overlaps too much", i)
		}
		rebuilt.WriteString(string(runes[prevEnd:span.End]))
		prevEnd = span.End
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestRecursiveSplitter_ShortText(t *testing.T) {
	s := newDefaultSplitter(t)

	chunks, err := s.SplitText("a short note")
	require.NoError(t, err)
	assert.Equal(t, []string{"a short note"}, chunks)

	assert.Empty(t, s.Spans(""))
}

func TestRecursiveSplitter_HardCutCount(t *testing.T) {
	s := newDefaultSplitter(t)

	tests := []struct {
		length int
		want   int
	}{
		{1500, 1},
		{1501, 2},
		{2750, 2},
		{2751, 3},
		{4000, 3},
		{10000, 8},
	}
	for _, tt := range tests {
		text := strings.Repeat("x", tt.length)
		spans := s.Spans(text)
		assert.Len(t, spans, tt.want, "length %d", tt.length)
		assertCoverage(t, s, text, spans)
	}
}

func TestRecursiveSplitter_PrefersParagraphs(t *testing.T) {
	s := newDefaultSplitter(t)
	first := strings.Repeat("word ", 240)
	second := strings.Repeat("more ", 200)
	text := first + "\n\n" + second

	spans := s.Spans(text)
	require.Len(t, spans, 2)
	assert.Equal(t, 1202, spans[0].End)
	// 1202-250 = 952 falls inside a word; the next word starts at 955.
	assert.Equal(t, 955, spans[1].Start)
	assertCoverage(t, s, text, spans)
}

func TestRecursiveSplitter_PrefersSentencesOverWords(t *testing.T) {
	s := newDefaultSplitter(t)
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 60)

	chunks, err := s.SplitText(text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(chunk, ". "), "chunk should end at a sentence: %q", chunk[len(chunk)-10:])
	}
	assertCoverage(t, s, text, s.Spans(text))
}

func TestRecursiveSplitter_ChunksStartAtWords(t *testing.T) {
	s := newDefaultSplitter(t)
	text := strings.Repeat("alpha beta gamma delta ", 300)

	chunks, err := s.SplitText(text)
	require.NoError(t, err)
	for _, chunk := range chunks {
		first, _ := utf8.DecodeRuneInString(chunk)
		assert.NotEqual(t, ' ', first)
	}
}

func TestRecursiveSplitter_CountsCodePoints(t *testing.T) {
	s := newDefaultSplitter(t)
	text := strings.Repeat("é", 3000)

	chunks, err := s.SplitText(text)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), DefaultChunkSize)
	}
	assertCoverage(t, s, text, s.Spans(text))
}

func TestRecursiveSplitter_MixedText(t *testing.T) {
	s, err := NewRecursiveSplitter(WithChunkSize(120), WithChunkOverlap(30))
	require.NoError(t, err)

	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("Paragraph start. Some words follow here! Does it end? ")
		if i%3 == 0 {
			sb.WriteString("\n")
		}
		if i%7 == 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(strings.Repeat("z", i))
	}
	text := sb.String()
	assertCoverage(t, s, text, s.Spans(text))
}

func TestNewRecursiveSplitter_InvalidSizes(t *testing.T) {
	for _, opts := range [][]SplitterOption{
		{WithChunkSize(0)},
		{WithChunkSize(100), WithChunkOverlap(100)},
		{WithChunkOverlap(-1)},
	} {
		_, err := NewRecursiveSplitter(opts...)
		assert.ErrorIs(t, err, ErrInvalidChunkSize)
	}
}

func TestRecursiveSplitter_CustomSeparators(t *testing.T) {
	s, err := NewRecursiveSplitter(WithChunkSize(10), WithChunkOverlap(2), WithSeparators([]string{"|"}))
	require.NoError(t, err)

	chunks, err := s.SplitText("aaaa|bbbb|cccc|dddd")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "aaaa|bbbb|", chunks[0])
}

func TestRecursiveSplitter_WhitespaceRun(t *testing.T) {
	s := newDefaultSplitter(t)
	text := "alpha " + strings.Repeat(" ", 3500) + "omega"

	assertCoverage(t, s, text, s.Spans(text))

	chunks, err := s.SplitText(text)
	require.NoError(t, err)
	for _, chunk := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
	assert.True(t, strings.HasPrefix(chunks[0], "alpha"))
	assert.True(t, strings.HasSuffix(chunks[len(chunks)-1], "omega"))
}
