// Package chunk splits raw documents into bounded, overlapping chunks.
//
// RecursiveSplitter is the default splitter. It measures text in code
// points and records the offset of every chunk, so chunks carry a
// start_index that lets callers reassemble the source text. Any other
// langchaingo textsplitter.TextSplitter can be used through Chunker as well.
//
// Chunker numbers chunks 0..n-1 across every document of one file.
package chunk
