package rules

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

// Strategy inspects a selection and reports a value when it applies
type Strategy[T any] func(*goquery.Selection) (T, bool)

// Chain is an ordered list of strategies; the first one that applies wins
type Chain[T any] []Strategy[T]

// First evaluates the strategies in order against root
func (c Chain[T]) First(root *goquery.Selection) (T, bool) {
	for _, strategy := range c {
		if v, ok := strategy(root); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Rule is one ordered selector heuristic.
// When Attr is set, only elements whose Attr value contains Contains (case-insensitive) match.
type Rule struct {
	Selector string `yaml:"selector"`
	Attr     string `yaml:"attr,omitempty"`
	Contains string `yaml:"contains,omitempty"`
}

// Select returns every element under root matching the rule, in document order
func (r Rule) Select(root *goquery.Selection) *goquery.Selection {
	matched := root.Find(r.Selector)
	if r.Attr == "" {
		return matched
	}
	needle := strings.ToLower(r.Contains)
	return matched.FilterFunction(func(_ int, s *goquery.Selection) bool {
		val, ok := s.Attr(r.Attr)
		return ok && strings.Contains(strings.ToLower(val), needle)
	})
}

// FirstText builds a chain that, per rule, takes the first matching element's
// whitespace-collapsed text and keeps it when accept approves
func FirstText(rules []Rule, accept func(string) bool) Chain[string] {
	chain := make(Chain[string], 0, len(rules))
	for _, rule := range rules {
		rule := rule
		chain = append(chain, func(root *goquery.Selection) (string, bool) {
			el := rule.Select(root).First()
			if el.Length() == 0 {
				return "", false
			}
			text := utils.CollapseWhitespace(el.Text())
			return text, accept(text)
		})
	}
	return chain
}

// FirstAttr builds a chain that, per rule, looks only at the first matching
// element and keeps its attribute value when accept approves
func FirstAttr(rules []Rule, attr string, accept func(string) bool) Chain[string] {
	chain := make(Chain[string], 0, len(rules))
	for _, rule := range rules {
		rule := rule
		chain = append(chain, func(root *goquery.Selection) (string, bool) {
			el := rule.Select(root).First()
			if el.Length() == 0 {
				return "", false
			}
			val := strings.TrimSpace(el.AttrOr(attr, ""))
			return val, accept(val)
		})
	}
	return chain
}

// AnyAttr builds a chain that, per rule, scans every matching element and
// returns the first non-blank attribute value keep maps to a kept result
func AnyAttr(rules []Rule, attr string, keep func(string) (string, bool)) Chain[string] {
	chain := make(Chain[string], 0, len(rules))
	for _, rule := range rules {
		rule := rule
		chain = append(chain, func(root *goquery.Selection) (string, bool) {
			var found string
			var ok bool
			rule.Select(root).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				val := strings.TrimSpace(s.AttrOr(attr, ""))
				if val == "" {
					return true
				}
				found, ok = keep(val)
				return !ok
			})
			if !ok {
				return "", false
			}
			return found, true
		})
	}
	return chain
}

// NonEmpty accepts any non-blank value
func NonEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}
