// internal/scraper/strategies.go
package scraper

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/valpere/PriceScrapexter/internal/utils"
)

// Strategy names, reported in results, logs and metrics.
const (
	StrategySelector   = "selector"
	StrategyPattern    = "pattern"
	StrategyStructured = "json-ld"
	StrategyMeta       = "meta"
)

// Strategy finds a price candidate in a parsed document.
type Strategy interface {
	Name() string
	TryExtract(doc *goquery.Document) (Candidate, bool)
}

// SelectorStrategy scans elements matched by an ordered selector list.
type SelectorStrategy struct {
	Selectors []string
	Validator *PriceValidator
}

func (s *SelectorStrategy) Name() string { return StrategySelector }

func (s *SelectorStrategy) TryExtract(doc *goquery.Document) (Candidate, bool) {
	for _, selector := range s.Selectors {
		var found Candidate
		ok := false
		doc.Find(selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			text := elementCandidate(el)
			if text != "" && s.Validator.IsValid(text) {
				found = Candidate{Value: text, Strategy: StrategySelector, Source: selector}
				ok = true
				return false
			}
			return true
		})
		if ok {
			return found, true
		}
	}
	return Candidate{}, false
}

// elementCandidate returns the element text, or the first non-empty
// candidate attribute, with whitespace collapsed.
func elementCandidate(el *goquery.Selection) string {
	text := strings.TrimSpace(el.Text())
	if text == "" {
		for _, attr := range candidateAttributes {
			if v, ok := el.Attr(attr); ok && strings.TrimSpace(v) != "" {
				text = v
				break
			}
		}
	}
	return utils.CollapseWhitespace(text)
}

// PatternStrategy applies regular expressions to the visible body text.
type PatternStrategy struct {
	Patterns  []PricePattern
	Validator *PriceValidator
}

func (s *PatternStrategy) Name() string { return StrategyPattern }

func (s *PatternStrategy) TryExtract(doc *goquery.Document) (Candidate, bool) {
	text := visibleText(doc)
	for _, p := range s.Patterns {
		for _, m := range p.Re.FindAllStringSubmatch(text, -1) {
			value := m[0]
			if len(m) > 1 && m[1] != "" {
				value = m[1]
			}
			value = strings.TrimSpace(value)
			if amount, ok := ParseAmount(value); ok && s.Validator.InRange(amount) {
				return Candidate{Value: value, Strategy: StrategyPattern, Source: p.Name}, true
			}
		}
	}
	return Candidate{}, false
}

// visibleText returns the body text without script, style and template content.
func visibleText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	return body.Text()
}

// StructuredDataStrategy reads JSON-LD blocks. Values are returned as found.
type StructuredDataStrategy struct {
	// OnError is called for blocks that fail to decode.
	OnError func(err error)
}

func (s *StructuredDataStrategy) Name() string { return StrategyStructured }

func (s *StructuredDataStrategy) TryExtract(doc *goquery.Document) (Candidate, bool) {
	var found Candidate
	ok := false
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, script *goquery.Selection) bool {
		dec := json.NewDecoder(bytes.NewBufferString(script.Text()))
		dec.UseNumber()
		var data interface{}
		if err := dec.Decode(&data); err != nil {
			if s.OnError != nil {
				s.OnError(err)
			}
			return true
		}
		if price := priceFromJSONLD(data); price != "" {
			found = Candidate{Value: price, Strategy: StrategyStructured, Source: "ld+json"}
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

// priceFromJSONLD searches arrays, @graph and offers for the first price.
func priceFromJSONLD(data interface{}) string {
	switch v := data.(type) {
	case []interface{}:
		for _, item := range v {
			if price := priceFromJSONLD(item); price != "" {
				return price
			}
		}
	case map[string]interface{}:
		if offers, ok := v["offers"]; ok {
			list, isList := offers.([]interface{})
			if !isList {
				list = []interface{}{offers}
			}
			for _, o := range list {
				offer, ok := o.(map[string]interface{})
				if !ok {
					continue
				}
				if price := scalarString(offer["price"]); price != "" {
					return price
				}
				if spec, ok := offer["priceSpecification"].(map[string]interface{}); ok {
					if price := scalarString(spec["price"]); price != "" {
						return price
					}
				}
			}
		}
		if price := scalarString(v["price"]); price != "" {
			return price
		}
		if price := scalarString(v["priceRange"]); price != "" {
			return price
		}
		if graph, ok := v["@graph"]; ok {
			return priceFromJSONLD(graph)
		}
	}
	return ""
}

// scalarString stringifies a JSON scalar, treating zero-like values as absent.
func scalarString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		if f, err := t.Float64(); err == nil && f == 0 {
			return ""
		}
		return t.String()
	}
	return ""
}

// MetaTagStrategy reads the content of price meta tags.
type MetaTagStrategy struct {
	Selectors []string
	Validator *PriceValidator
}

func (s *MetaTagStrategy) Name() string { return StrategyMeta }

func (s *MetaTagStrategy) TryExtract(doc *goquery.Document) (Candidate, bool) {
	for _, selector := range s.Selectors {
		content, ok := doc.Find(selector).First().Attr("content")
		if ok && s.Validator.IsValid(content) {
			return Candidate{Value: strings.TrimSpace(content), Strategy: StrategyMeta, Source: selector}, true
		}
	}
	return Candidate{}, false
}

// DefaultStrategies returns the four strategies in evaluation order.
func DefaultStrategies(v *PriceValidator, extraSelectors []string) []Strategy {
	selectors := make([]string, 0, len(DefaultPriceSelectors)+len(extraSelectors))
	selectors = append(selectors, extraSelectors...)
	selectors = append(selectors, DefaultPriceSelectors...)

	return []Strategy{
		&SelectorStrategy{Selectors: selectors, Validator: v},
		&PatternStrategy{Patterns: DefaultPricePatterns, Validator: v},
		&StructuredDataStrategy{},
		&MetaTagStrategy{Selectors: DefaultMetaSelectors, Validator: v},
	}
}
