package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-scrape-marketplace/models"
)

// ValidateRecord ensures the scraper captured the identifying fields.
func ValidateRecord(r *models.ProductRecord) error {
	if r == nil {
		return fmt.Errorf("record is nil")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("record missing name for %s", r.DetailURL)
	}
	if strings.TrimSpace(r.DetailURL) == "" {
		return fmt.Errorf("record missing detail url for %s", r.Name)
	}
	return nil
}

// FormatPrice renders an optional price for flat outputs; absent prices are
// empty.
func FormatPrice(price *float64) string {
	if price == nil {
		return ""
	}
	return strconv.FormatFloat(*price, 'f', -1, 64)
}
