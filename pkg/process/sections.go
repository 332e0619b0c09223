package process

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Sriram-PR/doc-harvester/pkg/rules"
	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

// NoteFrenchLocale marks a section found under a French heading
const NoteFrenchLocale = "fr locale detected"

// SectionResult holds the sections found on one project page
type SectionResult struct {
	Sections map[string]string // Section name -> text; only found sections are present
	Notes    []string
}

// Found reports whether any section was extracted
func (r SectionResult) Found() bool {
	return len(r.Sections) > 0
}

// SectionExtractor pulls named sections out of project pages by heading text
type SectionExtractor struct {
	set     *rules.Set
	content string // Selector of sibling tags collected as section text
}

// NewSectionExtractor creates a SectionExtractor
func NewSectionExtractor(set *rules.Set) *SectionExtractor {
	return &SectionExtractor{set: set, content: strings.Join(set.SectionContent, ", ")}
}

// Extract finds every configured section in doc
func (e *SectionExtractor) Extract(doc *goquery.Document) SectionResult {
	res := SectionResult{Sections: make(map[string]string)}
	for _, section := range e.set.Sections {
		text, heading := e.find(doc, section.Aliases)
		if text == "" {
			continue
		}
		res.Sections[section.Name] = text
		if e.isFrench(heading) {
			res.Notes = append(res.Notes, NoteFrenchLocale)
		}
	}
	return res
}

// find scans heading levels in order; within a level, the first heading containing
// an alias with non-empty content wins. Returns the content and the matched heading text.
func (e *SectionExtractor) find(doc *goquery.Document, aliases []string) (string, string) {
	lowered := make([]string, len(aliases))
	for i, a := range aliases {
		lowered[i] = strings.ToLower(a)
	}

	for _, level := range e.set.SectionHeadings {
		var content, headingText string
		doc.Find(level).EachWithBreak(func(_ int, h *goquery.Selection) bool {
			text := strings.ToLower(utils.CollapseWhitespace(h.Text()))
			for _, alias := range lowered {
				if !strings.Contains(text, alias) {
					continue
				}
				if c := e.contentAfter(h, level); c != "" {
					content, headingText = c, text
					return false
				}
			}
			return true
		})
		if content != "" {
			return content, headingText
		}
	}
	return "", ""
}

// contentAfter joins the text of content siblings following h, up to the next heading of the same level
func (e *SectionExtractor) contentAfter(h *goquery.Selection, level string) string {
	var parts []string
	h.NextUntil(level).Filter(e.content).Each(func(_ int, s *goquery.Selection) {
		if text := utils.CollapseWhitespace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

func (e *SectionExtractor) isFrench(headingText string) bool {
	for _, marker := range e.set.FrenchMarkers {
		if strings.Contains(headingText, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}
