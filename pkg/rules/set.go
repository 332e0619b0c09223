package rules

import (
	"fmt"
	"os"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"

	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

// CardFallback finds cards by class name when no card selector matched
type CardFallback struct {
	Tag          string `yaml:"tag"`
	ClassPattern string `yaml:"class_pattern"`
}

// SectionRule names one project section and the headings that introduce it
type SectionRule struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// Set is the full ordered heuristic configuration for listing, detail and project pages
type Set struct {
	Cards        []Rule       `yaml:"cards"`
	CardFallback CardFallback `yaml:"card_fallback"`
	Title        []Rule       `yaml:"title"`
	Link         []Rule       `yaml:"link"`
	Date         []Rule       `yaml:"date"`
	DatePattern  string       `yaml:"date_pattern"`
	Country      []Rule       `yaml:"country"`
	CardSector   []Rule       `yaml:"card_sector"`
	DetailSector []Rule       `yaml:"detail_sector"`
	PDFPrimary   []Rule       `yaml:"pdf_primary"`
	PDFFallback  []Rule       `yaml:"pdf_fallback"`
	PDFExtension string       `yaml:"pdf_extension"`
	NextLinks    []Rule       `yaml:"next_links"`
	PageLinks    []Rule       `yaml:"page_links"`

	Sections        []SectionRule `yaml:"sections"`
	SectionHeadings []string      `yaml:"section_headings"` // Heading tags scanned level by level
	SectionContent  []string      `yaml:"section_content"`  // Sibling tags collected as section text
	FrenchMarkers   []string      `yaml:"french_markers"`   // Heading words that flag a French page

	cardClassRe *regexp.Regexp
	dateRe      *regexp.Regexp
}

// UnmarshalYAML accepts either a bare selector string or a full rule mapping
func (r *Rule) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		r.Selector = value.Value
		r.Attr, r.Contains = "", ""
		return nil
	}
	type plain Rule
	var decoded plain
	if err := value.Decode(&decoded); err != nil {
		return err
	}
	*r = Rule(decoded)
	return nil
}

func sel(selectors ...string) []Rule {
	out := make([]Rule, 0, len(selectors))
	for _, s := range selectors {
		out = append(out, Rule{Selector: s})
	}
	return out
}

// Default returns the built-in heuristics for the AfDB document listing and MapAfrica project pages
func Default() *Set {
	s := &Set{
		Cards: sel(".views-row", ".document-card", ".search-result", ".result-item", ".document-item",
			"article", ".card", `[class*="document"]`, `[class*="result"]`),
		CardFallback: CardFallback{Tag: "div", ClassPattern: `(?i)document|result|card|item|view`},
		Title:        sel("h1", "h2", "h3", "h4", ".title", ".document-title", `[class*="title"]`, "a"),
		Link:         sel("a", ".link", `[class*="link"]`),
		Date:         sel(".date", ".published", `[class*="date"]`, "time", ".field-content"),
		DatePattern:  `\d{4}|\d{1,2}/\d{1,2}/\d{4}|\d{1,2}-\d{1,2}-\d{4}`,
		Country:      sel(".country", ".location", `[class*="country"]`, `[class*="location"]`, ".field-content"),
		CardSector:   sel(".sector", ".category", `[class*="sector"]`, `[class*="category"]`, ".field-content"),
		DetailSector: sel(".field-name-field-sector .field-item", ".field-name-field-category .field-item",
			".sector", ".category", `[class*="sector"]`, `[class*="category"]`),
		PDFPrimary: sel(`a[href$=".pdf"]`),
		PDFFallback: sel(`a[href*=".pdf"]`, ".file-link a", ".field-name-field-file a", `[class*="pdf"] a`,
			`a[download*=".pdf"]`),
		PDFExtension: ".pdf",
		NextLinks: append(sel(`nav a[rel="next"]`, `nav .pager__item--next a`, `.pagination a[rel="next"]`),
			Rule{Selector: "[aria-label]", Attr: "aria-label", Contains: "next"}),
		PageLinks: sel(".pagination a, .pager a, nav a"),

		Sections: []SectionRule{
			{Name: "general_description", Aliases: []string{
				"Project General Description", "General Description", "Description générale du projet",
				"Project Description", "Description du projet",
			}},
			{Name: "objectives", Aliases: []string{
				"Project Objectives", "Objectives", "Objectifs du projet", "Objectifs",
			}},
			{Name: "beneficiaries", Aliases: []string{
				"Beneficiaries", "Bénéficiaires", "Target Beneficiaries", "Bénéficiaires cibles",
			}},
		},
		SectionHeadings: []string{"h1", "h2", "h3", "h4"},
		SectionContent:  []string{"p", "div", "li", "span"},
		FrenchMarkers:   []string{"générale", "objectifs", "bénéficiaires"},
	}
	if err := s.Compile(); err != nil {
		panic(fmt.Sprintf("built-in rule set does not compile: %v", err)) // Programming error
	}
	return s
}

// LoadFile overlays a YAML rule file onto the defaults.
// Any key present in the file replaces the whole default list for that key.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading rules file '%s': %w", utils.ErrFilesystem, path, err)
	}
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%w: rules file '%s': %w", utils.ErrConfigValidation, path, err)
	}
	if err := s.Compile(); err != nil {
		return nil, fmt.Errorf("rules file '%s': %w", path, err)
	}
	return s, nil
}

// Compile validates the set and prepares its regular expressions
func (s *Set) Compile() error {
	required := map[string][]Rule{
		"cards": s.Cards, "title": s.Title, "link": s.Link,
		"detail_sector": s.DetailSector, "pdf_primary": s.PDFPrimary,
	}
	for name, list := range required {
		if len(list) == 0 {
			return fmt.Errorf("%w: rule list '%s' is empty", utils.ErrConfigValidation, name)
		}
	}
	for _, list := range [][]Rule{s.Cards, s.Title, s.Link, s.Date, s.Country, s.CardSector,
		s.DetailSector, s.PDFPrimary, s.PDFFallback, s.NextLinks, s.PageLinks} {
		for _, r := range list {
			if r.Selector == "" {
				return fmt.Errorf("%w: rule with empty selector", utils.ErrConfigValidation)
			}
		}
	}
	if s.PDFExtension == "" {
		s.PDFExtension = ".pdf"
	}

	compiled, err := utils.CompileRegexPatterns([]string{s.CardFallback.ClassPattern, s.DatePattern})
	if err != nil {
		return err
	}
	s.cardClassRe, s.dateRe = nil, nil
	idx := 0
	if s.CardFallback.ClassPattern != "" {
		s.cardClassRe = compiled[idx]
		idx++
	}
	if s.DatePattern != "" {
		s.dateRe = compiled[idx]
	}
	return nil
}

// LooksLikeDate reports whether text carries a recognizable date token
func (s *Set) LooksLikeDate(text string) bool {
	return s.dateRe != nil && s.dateRe.MatchString(text)
}

// SelectCards returns the elements of the first card rule with any match, and the rule that matched.
// Matches are never merged across rules. When nothing matches, the class-name fallback is used.
func (s *Set) SelectCards(root *goquery.Selection) (*goquery.Selection, string) {
	for _, rule := range s.Cards {
		if found := rule.Select(root); found.Length() > 0 {
			return found, rule.Selector
		}
	}
	if s.cardClassRe == nil || s.CardFallback.Tag == "" {
		return root.Not("*"), "fallback"
	}
	re := s.cardClassRe
	return root.Find(s.CardFallback.Tag).FilterFunction(func(_ int, el *goquery.Selection) bool {
		class, ok := el.Attr("class")
		return ok && re.MatchString(class)
	}), "fallback"
}
