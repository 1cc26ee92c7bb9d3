package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/poiesic/docvault/core"
	"github.com/tmc/langchaingo/schema"
)

// selectorSeparator follows the text of every matched element.
const selectorSeparator = "\n"

// ElementSelector picks the first element of a given type with a given id.
type ElementSelector struct {
	Element string `yaml:"element"`
	ID      string `yaml:"id"`
}

func (s ElementSelector) String() string {
	return s.Element + "=" + s.ID
}

// ParseElementSelector parses "element=id", as used on the command line.
func ParseElementSelector(s string) (ElementSelector, error) {
	element, id, ok := strings.Cut(s, "=")
	element, id = strings.TrimSpace(element), strings.TrimSpace(id)
	if !ok || element == "" || id == "" {
		return ElementSelector{}, fmt.Errorf("%w: %q (want element=id)", ErrInvalidSelector, s)
	}
	return ElementSelector{Element: element, ID: id}, nil
}

// HTMLExtractor extracts the text of an HTML page as one document.
//
// With Selectors set, only the first element matching each selector
// contributes, in selector order, each followed by a newline. Otherwise all
// visible text is used. Separator is placed between the text nodes of an
// element.
type HTMLExtractor struct {
	Selectors []ElementSelector
	Separator string
}

const invisibleElements = "script, style, noscript, template"

func (h *HTMLExtractor) Extract(ctx context.Context, source string, data []byte) ([]schema.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrExtraction, source, err)
	}

	title := ""
	if t := doc.Find("title").First(); t.Length() > 0 {
		title = strings.TrimSpace(t.Text())
	}

	doc.Find(invisibleElements).Remove()

	var text string
	if len(h.Selectors) > 0 {
		var sb strings.Builder
		for _, selector := range h.Selectors {
			match := findByID(doc.Selection, selector)
			if match.Length() == 0 {
				continue
			}
			sb.WriteString(selectionText(match, h.Separator))
			sb.WriteString(selectorSeparator)
		}
		text = sb.String()
	} else {
		text = selectionText(doc.Selection, h.Separator)
	}

	return []schema.Document{{
		PageContent: strings.TrimSpace(text),
		Metadata: map[string]any{
			core.MetaTitle:  title,
			core.MetaFormat: "html",
		},
	}}, nil
}

func findByID(root *goquery.Selection, selector ElementSelector) *goquery.Selection {
	return root.Find(selector.Element).FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, ok := s.Attr("id")
		return ok && id == selector.ID
	}).First()
}

func selectionText(s *goquery.Selection, separator string) string {
	if separator == "" {
		return s.Text()
	}
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, child *goquery.Selection) {
			if goquery.NodeName(child) == "#text" {
				parts = append(parts, child.Text())
				return
			}
			walk(child)
		})
	}
	walk(s)
	return strings.Join(parts, separator)
}
