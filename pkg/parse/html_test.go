package parse

import (
	"errors"
	"testing"

	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

func TestParseHTML(t *testing.T) {
	doc, err := ParseHTML([]byte(`<html><body><div class="views-row"><h3>Title</h3></div></body></html>`))
	if err != nil {
		t.Fatalf("ParseHTML() unexpected error: %v", err)
	}
	if got := doc.Find(".views-row h3").Text(); got != "Title" {
		t.Errorf("selection text = %q, want %q", got, "Title")
	}
}

func TestParseHTML_EmptyBody(t *testing.T) {
	_, err := ParseHTML([]byte("  \n "))
	if !errors.Is(err, utils.ErrParsing) {
		t.Errorf("ParseHTML(empty) error = %v, want ErrParsing", err)
	}
	if utils.CategorizeError(err) != "Content_ParsingHTML" {
		t.Errorf("CategorizeError = %q, want Content_ParsingHTML", utils.CategorizeError(err))
	}
}
