// Package extract recovers the profile counters from a fetched document.
package extract

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/JakeFAU/instascrape/internal/profile"
)

// DescriptionSelector matches the page summary tag carrying the counters.
const DescriptionSelector = `meta[property="og:description"]`

// MetaDescription parses body as HTML and returns the content attribute of
// the first element matching DescriptionSelector.
func MetaDescription(body []byte) (string, error) {
	return metaContent(body, DescriptionSelector)
}

func metaContent(body []byte, selector string) (string, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return "", fmt.Errorf("%w: %w", profile.SelectorCompileFailed, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		// The html5 tokenizer only fails on reader errors.
		return "", fmt.Errorf("%w: parse document: %w", profile.MetaTagNotFound, err)
	}
	meta := doc.FindMatcher(sel).First()
	if meta.Length() == 0 {
		return "", profile.MetaTagNotFound
	}
	content, ok := meta.Attr("content")
	if !ok {
		return "", profile.ContentAttributeNotFound
	}
	return content, nil
}
