package parser

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// DefaultPageSize is the number of items the marketplace shows per listing page.
const DefaultPageSize = 90

// ErrMissingItemCount means a listing page carried no total item count, so
// no crawl plan can be derived from it.
var ErrMissingItemCount = errors.New("listing page has no total item count")

var (
	digitRun  = regexp.MustCompile(`[0-9]+`)
	numberRun = regexp.MustCompile(`[0-9.]+`)
)

// TotalItems reads the total item count from the listing summary text. The
// summary also carries the visible range ("1 - 90 of 412"), so the last run
// of digits wins.
func TotalItems(doc *Document) (int, error) {
	summary := strings.ReplaceAll(doc.FirstText(itemCountPath), ",", "")
	runs := digitRun.FindAllString(summary, -1)
	if len(runs) == 0 {
		return 0, ErrMissingItemCount
	}
	total, err := strconv.Atoi(runs[len(runs)-1])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMissingItemCount, err)
	}
	return total, nil
}

// PageCount returns ceil(total/pageSize).
func PageCount(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// PageURL rewrites the page-number query parameter of a listing URL. The
// parameter name is matched case-insensitively and keeps its spelling.
func PageURL(listingURL string, page int) (string, error) {
	u, err := url.Parse(listingURL)
	if err != nil {
		return "", fmt.Errorf("parse listing url: %w", err)
	}
	query := u.Query()
	key := "Page"
	for k := range query {
		if strings.EqualFold(k, "page") {
			key = k
			break
		}
	}
	query.Set(key, strconv.Itoa(page))
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// PlanPages computes the listing URLs for pages 1..pageCount of the section
// the document belongs to.
func PlanPages(doc *Document, listingURL string, pageSize int) ([]string, error) {
	total, err := TotalItems(doc)
	if err != nil {
		return nil, err
	}

	count := PageCount(total, pageSize)
	pages := make([]string, 0, count)
	for page := 1; page <= count; page++ {
		next, err := PageURL(listingURL, page)
		if err != nil {
			return nil, err
		}
		pages = append(pages, next)
	}
	return pages, nil
}
