// internal/scraper/inspect.go
package scraper

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/valpere/PriceScrapexter/internal/utils"
)

// Inspection limits.
const (
	maxSelectorMatches = 50
	maxPatternMatches  = 10
	maxMatchText       = 100
	maxMatchHTML       = 200
	maxHTMLPreview     = 1000
)

// SelectorMatch describes one element matched by a price selector.
type SelectorMatch struct {
	Selector  string `json:"selector"`
	Text      string `json:"text,omitempty"`
	Content   string `json:"content,omitempty"`
	DataPrice string `json:"dataPrice,omitempty"`
	Value     string `json:"value,omitempty"`
	HTML      string `json:"html,omitempty"`
	Valid     bool   `json:"valid"`
}

// PatternMatches lists the matches of one price pattern in the page text.
type PatternMatches struct {
	Pattern string   `json:"pattern"`
	Name    string   `json:"name"`
	Matches []string `json:"matches"`
}

// Inspection is a diagnostic report of what the heuristics see on a page.
type Inspection struct {
	URL          string           `json:"url"`
	Status       string           `json:"status"`
	FoundPrice   *string          `json:"foundPrice"`
	Strategy     string           `json:"strategy,omitempty"`
	Source       string           `json:"source,omitempty"`
	DebugResults []SelectorMatch  `json:"debugResults"`
	RegexMatches []PatternMatches `json:"regexMatches"`
	HTMLLength   int              `json:"htmlLength"`
	HTMLPreview  string           `json:"htmlPreview"`
}

// Inspect parses body and reports selector matches, pattern matches and
// the price Extract would return.
func (pe *PriceExtractor) Inspect(url string, body []byte) (*Inspection, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	report := &Inspection{
		URL:          url,
		Status:       "success",
		DebugResults: []SelectorMatch{},
		RegexMatches: []PatternMatches{},
		HTMLLength:   len(body),
		HTMLPreview:  utils.TruncateString(string(body), maxHTMLPreview),
	}

	selectors, validator := DefaultPriceSelectors, NewPriceValidator()
	for _, s := range pe.strategies {
		if ss, ok := s.(*SelectorStrategy); ok {
			selectors, validator = ss.Selectors, ss.Validator
		}
	}

	for _, selector := range selectors {
		if len(report.DebugResults) >= maxSelectorMatches {
			break
		}
		doc.Find(selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			html, _ := el.Html()
			content, _ := el.Attr("content")
			dataPrice, _ := el.Attr("data-price")
			value, _ := el.Attr("value")
			report.DebugResults = append(report.DebugResults, SelectorMatch{
				Selector:  selector,
				Text:      utils.TruncateString(utils.CollapseWhitespace(el.Text()), maxMatchText),
				Content:   content,
				DataPrice: dataPrice,
				Value:     value,
				HTML:      utils.TruncateString(html, maxMatchHTML),
				Valid:     validator.IsValid(elementCandidate(el)),
			})
			return len(report.DebugResults) < maxSelectorMatches
		})
	}

	text := visibleText(doc)
	patterns := append(append([]PricePattern{}, DefaultPricePatterns...), debugPatterns...)
	for _, p := range patterns {
		matches := p.Re.FindAllString(text, maxPatternMatches)
		if len(matches) == 0 {
			continue
		}
		report.RegexMatches = append(report.RegexMatches, PatternMatches{
			Pattern: p.Re.String(),
			Name:    p.Name,
			Matches: matches,
		})
	}

	if c, err := pe.Extract(doc); err == nil {
		report.FoundPrice = &c.Value
		report.Strategy = c.Strategy
		report.Source = c.Source
	}
	return report, nil
}
