package insight

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	htmlReadLimit      = 2 << 20
	htmlHighlightLimit = 12
)

// HTMLBackend reads the document title, meta keywords and h1-h3 headings.
// The meta description becomes the caption.
type HTMLBackend struct{}

func (HTMLBackend) Extract(_ context.Context, path string) (*Insight, error) {
	data, err := readHead(path, htmlReadLimit)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var candidates []string
	candidates = append(candidates, doc.Find("title").First().Text())
	if kw, ok := metaContent(doc, "keywords"); ok {
		candidates = append(candidates, strings.Split(kw, ",")...)
	}
	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		candidates = append(candidates, s.Text())
	})
	for i, c := range candidates {
		candidates[i] = collapseSpace(c)
	}
	highlights := uniqueFold(candidates, htmlHighlightLimit)

	caption, _ := metaContent(doc, "description")
	caption = collapseSpace(caption)
	if len(highlights) == 0 && caption == "" {
		return nil, nil
	}
	return New(highlights, caption), nil
}

func metaContent(doc *goquery.Document, name string) (string, bool) {
	var out string
	var found bool
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		n, _ := s.Attr("name")
		if !strings.EqualFold(strings.TrimSpace(n), name) {
			return true
		}
		out, found = s.Attr("content")
		return false
	})
	return out, found
}
