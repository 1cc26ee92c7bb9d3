// Package extract turns raw file bytes into langchaingo documents.
//
// A Registry maps case-sensitive file suffixes to Extractors. The defaults
// cover .pdf (one document per non-empty page), .docx, .txt and .html.
// Callers distinguish three outcomes:
//   - documents, nil: the file produced text (possibly none)
//   - nil, ErrUnsupported: no extractor is registered for the suffix
//   - nil, ErrExtraction: the extractor failed on the file
package extract
