package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/aluiziolira/go-scrape-marketplace/models"
)

// Substrings that mark an item as non-game content. The first list is
// matched case-insensitively, the second exactly.
var (
	excludedFolded = []string{"theme", "pics", "trial game"}
	excludedExact  = []string{"E3 2"}
)

// ExtractProduct builds the record for a detail page from the stub carried
// over from its listing row. It reports false when the item is excluded.
// The stub is not modified.
func ExtractProduct(doc *Document, stub models.ItemStub) (*models.ProductRecord, bool) {
	record := &models.ProductRecord{ItemStub: stub}

	for _, field := range textFields {
		field.set(record, doc.FirstText(field.expr))
	}
	for _, field := range markupFields {
		field.set(record, doc.FirstMarkup(field.expr))
	}

	record.Price = ParsePrice(doc.FirstText(pricePath))
	record.ContentRating = ContentRating(doc)
	record.StarRating = StarRating(doc)
	record.DownloadCounters = ParseDownloadCounters(doc.Texts(downloadLabelsPath))
	record.GoldPrice = GoldPrice(doc, record.DownloadCounters)
	record.Name = LongerName(record.Name, doc.FirstText(longNamePath))

	if Excluded(record.Name) {
		return nil, false
	}
	return record, true
}

// LongerName returns candidate when it has strictly more characters than
// current.
func LongerName(current, candidate string) string {
	if utf8.RuneCountInString(candidate) > utf8.RuneCountInString(current) {
		return candidate
	}
	return current
}

// Excluded reports whether a name belongs to themes, picture packs, trials or
// event trailers.
func Excluded(name string) bool {
	folded := strings.ToLower(name)
	for _, s := range excludedFolded {
		if strings.Contains(folded, s) {
			return true
		}
	}
	for _, s := range excludedExact {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}
