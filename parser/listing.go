package parser

import (
	"net/url"
	"strings"

	"github.com/aluiziolira/go-scrape-marketplace/models"
)

// Query parameters appended to product links.
const (
	detailSortKey   = "SortBy"
	detailSortValue = "BestSelling"
)

// ParseListing turns every row of a listing page into a stub. A page without
// rows yields no stubs.
func ParseListing(doc *Document, origin, discoveryDate string) []models.ItemStub {
	category := doc.FirstText(sectionHeadingPath)
	rows := doc.Find(listingRowsPath)

	stubs := make([]models.ItemStub, 0, len(rows))
	for _, row := range rows {
		stubs = append(stubs, models.ItemStub{
			Name:          CleanName(row.FirstText(rowNamePath)),
			Category:      category,
			DetailURL:     DetailURL(origin, row.FirstText(rowLinkPath)),
			DiscoveryDate: discoveryDate,
		})
	}
	return stubs
}

// DetailURL resolves a row link against the site origin and appends the
// product sort order. It returns "" when the link is empty or malformed.
func DetailURL(origin, href string) string {
	if strings.TrimSpace(href) == "" {
		return ""
	}
	base, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}

	u := base.ResolveReference(ref)
	query := u.Query()
	query.Set(detailSortKey, detailSortValue)
	u.RawQuery = query.Encode()
	return u.String()
}

// DetailFetchURL adds the paging and sort parameters the detail page request
// is issued with.
func DetailFetchURL(detailURL string) (string, error) {
	u, err := url.Parse(detailURL)
	if err != nil {
		return "", err
	}
	query := u.Query()
	query.Set("PageSize", "60")
	query.Set("Page", "1")
	query.Set("sortby", "BestSellingToday")
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// CleanName trims a listing name and drops non-ASCII characters.
func CleanName(name string) string {
	ascii := strings.Map(func(r rune) rune {
		if r > 0x7F {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	return strings.TrimSpace(ascii)
}
