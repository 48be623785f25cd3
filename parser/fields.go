package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-scrape-marketplace/models"
	"github.com/antchfx/xpath"
)

const (
	maxStarRating  = 5
	starIncrements = 4
)

type textField struct {
	expr *xpath.Expr
	set  func(r *models.ProductRecord, value string)
}

// Plain text fields fall back to "" when their node is missing.
var textFields = []textField{
	{developerPath, func(r *models.ProductRecord, v string) { r.Developer = v }},
	{publisherPath, func(r *models.ProductRecord, v string) { r.Publisher = v }},
	{genrePath, func(r *models.ProductRecord, v string) { r.Genre = v }},
	{releaseDatePath, func(r *models.ProductRecord, v string) { r.ReleaseDate = v }},
	{boxArtPath, func(r *models.ProductRecord, v string) { r.BoxArtURL = v }},
	{reviewCountPath, func(r *models.ProductRecord, v string) { r.ReviewCount = v }},
}

// Markup fields keep the raw list fragment.
var markupFields = []textField{
	{featuresPath, func(r *models.ProductRecord, v string) { r.Features = v }},
	{onlineFeaturesPath, func(r *models.ProductRecord, v string) { r.OnlineFeatures = v }},
}

type counterRule struct {
	matches func(label string) bool
	set     func(c *models.DownloadCounters, count string)
}

// Download labels are tested against these rules in order; the first match
// claims the label.
var counterRules = []counterRule{
	{hasPrefix("Games "), func(c *models.DownloadCounters, v string) { c.GameCount = v }},
	{contains("Game Demos"), func(c *models.DownloadCounters, v string) { c.Demos = v }},
	{contains("Game Videos"), func(c *models.DownloadCounters, v string) { c.Videos = v }},
	{contains("Game Add-ons"), func(c *models.DownloadCounters, v string) { c.AddOns = v }},
	{contains("Themes"), func(c *models.DownloadCounters, v string) { c.Themes = v }},
	{contains("Gamer Pictures"), func(c *models.DownloadCounters, v string) { c.GamerPictures = v }},
	{contains("Avatar Items"), func(c *models.DownloadCounters, v string) { c.AvatarItems = v }},
	{contains("Xbox SmartGlass"), func(c *models.DownloadCounters, v string) { c.CompanionApps = v }},
}

func hasPrefix(prefix string) func(string) bool {
	return func(label string) bool { return strings.HasPrefix(label, prefix) }
}

func contains(substr string) func(string) bool {
	return func(label string) bool { return strings.Contains(label, substr) }
}

// ParsePrice converts a displayed price to a number. "Free" is 0; an empty
// or unreadable value yields nil.
func ParsePrice(text string) *float64 {
	text = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(text), "$"))
	if text == "" {
		return nil
	}
	if text == "Free" {
		zero := 0.0
		return &zero
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &value
}

// ParseStarClass returns the star numerator encoded in a marker class name
// such as "Star Star3".
func ParseStarClass(class string) (float64, bool) {
	run := numberRun.FindString(class)
	if run == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(run, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// StarRating sums numerator/4 across the star markers of a detail page.
func StarRating(doc *Document) float64 {
	rating := 0.0
	for _, class := range doc.Texts(starClassPath) {
		if numerator, ok := ParseStarClass(class); ok {
			rating += numerator / starIncrements
		}
	}
	return math.Min(math.Max(rating, 0), maxStarRating)
}

// ContentRating returns the first non-blank text of the rating block.
func ContentRating(doc *Document) string {
	for _, text := range doc.Texts(contentRatingPath) {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// ParseDownloadCounters maps download category labels such as
// "Game Demos (3)" onto their counters.
func ParseDownloadCounters(labels []string) models.DownloadCounters {
	var counters models.DownloadCounters
	for _, label := range labels {
		label = strings.TrimSpace(label)
		for _, rule := range counterRules {
			if !rule.matches(label) {
				continue
			}
			if count := digitRun.FindString(label); count != "" {
				rule.set(&counters, count)
			}
			break
		}
	}
	return counters
}

// GoldPrice is only listed for items that bundle games.
func GoldPrice(doc *Document, counters models.DownloadCounters) *float64 {
	games, err := strconv.Atoi(counters.GameCount)
	if err != nil || games <= 0 {
		return nil
	}
	return ParsePrice(doc.FirstText(goldPricePath))
}
