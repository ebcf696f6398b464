// internal/scraper/validator.go
package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// Default acceptance bounds for price candidates.
const (
	DefaultMinPrice       = 0.01
	DefaultMaxPrice       = 100000.0
	DefaultMaxPriceLength = 50
)

var (
	currencyEvidenceRe = regexp.MustCompile(`[$£€¥₹฿]|\d+[.,]\d+|\d+`)
	currencyWordRe     = regexp.MustCompile(`(?i)baht|บาท|thb|pounds?|euros?|dollars?`)
	amountTokenRe      = regexp.MustCompile(`\d[\d.,]*`)
)

// PriceValidator decides whether a candidate string is a plausible price.
// It is a heuristic: any number within range is accepted.
type PriceValidator struct {
	MinValue  float64
	MaxValue  float64
	MaxLength int
}

// NewPriceValidator returns a validator with the default bounds.
func NewPriceValidator() *PriceValidator {
	return &PriceValidator{
		MinValue:  DefaultMinPrice,
		MaxValue:  DefaultMaxPrice,
		MaxLength: DefaultMaxPriceLength,
	}
}

// IsValid reports whether text looks like a price within range.
func (v *PriceValidator) IsValid(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > v.MaxLength {
		return false
	}

	folded := width.Narrow.String(text)
	if !currencyEvidenceRe.MatchString(folded) && !currencyWordRe.MatchString(folded) {
		return false
	}

	amount, ok := ParseAmount(folded)
	if !ok {
		return false
	}
	return v.InRange(amount)
}

// InRange reports whether amount lies within [MinValue, MaxValue].
func (v *PriceValidator) InRange(amount float64) bool {
	return amount >= v.MinValue && amount <= v.MaxValue
}

// ParseAmount reads the first number in text. Thousands and decimal
// separators are told apart by position:
//
//	"1,299.00" -> 1299    "1.299,00" -> 1299
//	"19,99"    -> 19.99   "1,290"    -> 1290
func ParseAmount(text string) (float64, bool) {
	token := amountTokenRe.FindString(width.Narrow.String(text))
	token = strings.TrimRight(token, ".,")
	if token == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(normalizeSeparators(token), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func normalizeSeparators(token string) string {
	dots := strings.Count(token, ".")
	commas := strings.Count(token, ",")

	switch {
	case dots > 0 && commas > 0:
		if strings.LastIndex(token, ",") > strings.LastIndex(token, ".") {
			token = strings.ReplaceAll(token, ".", "")
			i := strings.LastIndex(token, ",")
			return strings.ReplaceAll(token[:i], ",", "") + "." + token[i+1:]
		}
		return strings.ReplaceAll(token, ",", "")
	case commas == 1:
		if frac := len(token) - strings.Index(token, ",") - 1; frac >= 1 && frac <= 2 {
			return strings.Replace(token, ",", ".", 1)
		}
		return strings.ReplaceAll(token, ",", "")
	case commas > 1:
		return strings.ReplaceAll(token, ",", "")
	case dots > 1:
		return strings.ReplaceAll(token, ".", "")
	}
	return token
}
