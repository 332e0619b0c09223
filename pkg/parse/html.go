package parse

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

// ParseHTML builds a queryable document from raw page bytes
func ParseHTML(body []byte) (*goquery.Document, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: HTML body is empty", utils.ErrParsing)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: HTML parsing failed: %w", utils.ErrParsing, err)
	}
	return doc, nil
}
