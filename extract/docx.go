package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/docvault/core"
	"github.com/tmc/langchaingo/schema"
)

const (
	docxBodyPart = "word/document.xml"
	docxCorePart = "docProps/core.xml"
)

// DOCXExtractor reads the body text of an Office Open XML document.
// Paragraphs and line breaks become newlines, tabs become tab characters.
type DOCXExtractor struct{}

func (DOCXExtractor) Extract(ctx context.Context, source string, data []byte) ([]schema.Document, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtraction, source, err)
	}

	var body, coreProps *zip.File
	for _, f := range archive.File {
		switch f.Name {
		case docxBodyPart:
			body = f
		case docxCorePart:
			coreProps = f
		}
	}
	if body == nil {
		return nil, fmt.Errorf("%w: %s: missing %s", ErrExtraction, source, docxBodyPart)
	}

	text, err := readDocxBody(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtraction, source, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	metadata := map[string]any{core.MetaFormat: "docx"}
	if coreProps != nil {
		// A broken core.xml only loses the title
		if title, err := readDocxTitle(coreProps); err == nil && title != "" {
			metadata[core.MetaTitle] = title
		}
	}
	return []schema.Document{{PageContent: text, Metadata: metadata}}, nil
}

func readDocxBody(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(rc)
	inText := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

func readDocxTitle(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var props struct {
		Title string `xml:"title"`
	}
	if err := xml.NewDecoder(rc).Decode(&props); err != nil {
		return "", err
	}
	return strings.TrimSpace(props.Title), nil
}
