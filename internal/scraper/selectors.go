// internal/scraper/selectors.go
package scraper

import (
	"regexp"
)

// DefaultPriceSelectors is the ordered selector list. Common patterns come
// first; broader and international ones follow.
var DefaultPriceSelectors = []string{
	// Common
	".price", ".product-price", ".current-price", ".price-current", ".price-value",
	".price-now", ".sale-price", ".offer-price", ".final-price", ".selling-price",

	// UK retailers
	".now-price", ".was-price", ".c-product-price", ".pdp-product-price",
	".price-current-value", ".product-price-current", ".price-range", ".price-value-current",

	// Attributes
	"[data-price]", `[itemprop="price"]`, `[data-testid*="price"]`, `[class*="price"]`,
	`[data-component="price"]`, `[data-testid="large-price"]`, `[data-testid="current-price"]`,
	`[data-test="price"]`, `[data-testid="price-display"]`, `[aria-label*="price"]`,

	// Amazon
	"#priceblock_ourprice", "#priceblock_dealprice", ".a-price .a-offscreen",
	".a-price-whole", ".a-price .a-price-whole", ".a-price-current",

	// Generic
	".cost", ".amount", ".money", ".currency", ".value", ".pricing",
	".product_price", ".product-price-value", ".price-display", ".price-wrapper",
	".price-container", ".price-holder", ".price-content", ".price-text",

	// International
	".precio", ".preis", ".prix", ".prezzo", ".цена", ".价格", ".가격", ".ราคา",
	`[class*="precio"]`, `[class*="preis"]`, `[class*="prix"]`, `[class*="prezzo"]`,
	`[class*="ราคา"]`, "[data-price-value]", "[data-cost]", "[data-amount]",

	// Shopify
	".price--highlight", ".price--regular", ".price--sale", ".price__regular",
	".price__sale", ".product-form__price", ".product__price",

	// WooCommerce
	".woocommerce-Price-amount", ".price .amount",

	// Magento
	".price-wrapper .price", ".regular-price .price", ".special-price .price",

	// Thai
	".price-th", ".baht-price", ".thb-price", ".thai-price",
	`[class*="baht"]`, `[class*="thb"]`,
}

// candidateAttributes are read, in order, when an element has no text.
var candidateAttributes = []string{"content", "data-price", "value", "title"}

// DefaultMetaSelectors lists meta tags that carry a price in their content attribute.
var DefaultMetaSelectors = []string{
	`meta[property="product:price:amount"]`,
	`meta[property="og:price:amount"]`,
	`meta[name="price"]`,
	`meta[itemprop="price"]`,
}

// PricePattern is a named regular expression applied to page text. When the
// expression has a capture group, group 1 is the candidate.
type PricePattern struct {
	Name string
	Re   *regexp.Regexp
}

// DefaultPricePatterns are tried in order against the visible body text.
var DefaultPricePatterns = []PricePattern{
	{"gbp-prefix", regexp.MustCompile(`£\s*` + amountPattern)},
	{"gbp-suffix", regexp.MustCompile(amountPattern + `\s*£`)},
	{"eur-prefix", regexp.MustCompile(`€\s*` + amountPattern)},
	{"eur-suffix", regexp.MustCompile(amountPattern + `\s*€`)},
	{"usd-prefix", regexp.MustCompile(`\$\s*` + amountPattern)},
	{"usd-suffix", regexp.MustCompile(amountPattern + `\s*\$`)},
	{"symbol-prefix", regexp.MustCompile(`[¥₹฿]\s*` + amountPattern)},
	{"symbol-suffix", regexp.MustCompile(amountPattern + `\s*[¥₹฿]`)},
	{"baht-suffix", regexp.MustCompile(amountPattern + `\s*บาท`)},
	{"baht-prefix", regexp.MustCompile(`บาท\s*` + amountPattern)},
	{"thousands", regexp.MustCompile(`\b(?:\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d{1,3}(?:\.\d{3})+,\d{1,2})\b`)},
	{"decimal", regexp.MustCompile(`\b\d{1,4}[.,]\d{2}\b`)},
	{"currency-word", regexp.MustCompile(`(?i)\b(\d{2,6})\s*(?:pounds?|euros?|dollars?|baht|gbp|eur|usd|thb)`)},
}

// amountPattern matches a grouped amount such as 1,299.99 or 1.299,99 before
// falling back to a plain number with an optional decimal part.
const amountPattern = `(?:\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,3})?)`

// debugPatterns are reported by Inspect in addition to DefaultPricePatterns.
var debugPatterns = []PricePattern{
	{"whole-number", regexp.MustCompile(`\b\d{3,6}\b`)},
}
