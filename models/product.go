// Package models defines data structures for the scraper.
package models

import "time"

// ItemStub carries the fields known from a listing row to the detail fetch.
// It is passed by value so the detail handler never shares it.
type ItemStub struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	DetailURL     string `json:"detail_url"`
	DiscoveryDate string `json:"discovery_date"`
}

// DownloadCounters holds the per-category download counts shown on a detail
// page. A counter is empty when the page does not list its category.
type DownloadCounters struct {
	GameCount     string `json:"game_count"`
	Demos         string `json:"demos"`
	Videos        string `json:"videos"`
	AddOns        string `json:"add_ons"`
	Themes        string `json:"themes"`
	GamerPictures string `json:"gamer_pictures"`
	AvatarItems   string `json:"avatar_items"`
	CompanionApps string `json:"companion_apps"`
}

// ProductRecord is a fully extracted catalog item.
type ProductRecord struct {
	ItemStub
	Developer      string   `json:"developer"`
	Publisher      string   `json:"publisher"`
	Genre          string   `json:"genre"`
	Features       string   `json:"features"`
	OnlineFeatures string   `json:"online_features"`
	Price          *float64 `json:"price"`
	GoldPrice      *float64 `json:"gold_price"`
	BoxArtURL      string   `json:"box_art_url"`
	ContentRating  string   `json:"content_rating"`
	StarRating     float64  `json:"star_rating"`
	ReviewCount    string   `json:"review_count"`
	ReleaseDate    string   `json:"release_date"`
	DownloadCounters
}

// ScraperResult holds the overall result of a scraping operation
type ScraperResult struct {
	CrawlID       string
	StartTime     time.Time
	EndTime       time.Time
	TotalCount    int
	ExcludedCount int
	ErrorCount    int
	FailedURLs    []string
	ErrorsByType  map[string]int
	RetryCount    int
	RequestCount  int
	PageCount     int
}
