package parser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aluiziolira/go-scrape-marketplace/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://marketplace.xbox.com"

func loadDoc(t *testing.T, name string) *Document {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	defer f.Close()

	doc, err := ParseHTML(f)
	require.NoError(t, err)
	return doc
}

func parseDoc(t *testing.T, body string) *Document {
	t.Helper()
	doc, err := ParseHTML(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func summaryPage(summary string) string {
	return `<html><body><div id="BodyContent"><div><h1>Xbox 360 Games</h1></div><div></div>` +
		`<div><div></div><div><div>` + summary + `</div></div><ol></ol></div></div></body></html>`
}

func TestTotalItems(t *testing.T) {
	tests := []struct {
		name    string
		summary string
		want    int
		wantErr bool
	}{
		{name: "range and total", summary: "1 - 90 of 412", want: 412},
		{name: "thousands separator", summary: "1 - 90 of 1,234 results", want: 1234},
		{name: "single number", summary: "37 items", want: 37},
		{name: "no digits", summary: "No results", wantErr: true},
		{name: "empty", summary: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TotalItems(parseDoc(t, summaryPage(tt.summary)))
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMissingItemCount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTotalItemsMissingSummaryBlock(t *testing.T) {
	_, err := TotalItems(parseDoc(t, "<html><body><p>maintenance</p></body></html>"))
	require.ErrorIs(t, err, ErrMissingItemCount)
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{total: 412, size: 90, want: 5},
		{total: 90, size: 90, want: 1},
		{total: 91, size: 90, want: 2},
		{total: 1, size: 90, want: 1},
		{total: 0, size: 90, want: 0},
		{total: 10, size: 0, want: 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PageCount(tt.total, tt.size), "PageCount(%d, %d)", tt.total, tt.size)
	}
}

func TestPageURLKeepsParameterSpelling(t *testing.T) {
	got, err := PageURL("https://marketplace.xbox.com/en-US/Games/Xbox360Games?pagesize=90&sortby=Title&page=1", 7)
	require.NoError(t, err)
	assert.Contains(t, got, "page=7")
	assert.Contains(t, got, "pagesize=90")
	assert.NotContains(t, got, "Page=")

	got, err = PageURL("http://marketplace.xbox.com/en-US/Games/XboxArcadeGames?SortBy=BestSelling&PageSize=90&Page=1", 3)
	require.NoError(t, err)
	assert.Contains(t, got, "Page=3")
	assert.Contains(t, got, "PageSize=90")
}

func TestPlanPages(t *testing.T) {
	seed := "http://marketplace.xbox.com/en-US/Games/GamesOnDemand?pagesize=90&sortby=BestSelling&Page=1"
	pages, err := PlanPages(parseDoc(t, summaryPage("1 - 90 of 181")), seed, DefaultPageSize)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	for i, page := range pages {
		assert.Contains(t, page, "Page="+string(rune('1'+i)))
		assert.True(t, strings.HasPrefix(page, "http://marketplace.xbox.com/en-US/Games/GamesOnDemand?"))
	}

	_, err = PlanPages(parseDoc(t, summaryPage("")), seed, DefaultPageSize)
	require.ErrorIs(t, err, ErrMissingItemCount)
}

func TestParseListing(t *testing.T) {
	stubs := ParseListing(loadDoc(t, "listing.html"), testOrigin, "2026-10-18")
	require.Len(t, stubs, 3)

	assert.Equal(t, models.ItemStub{
		Name:          "Halo 4",
		Category:      "Games on Demand",
		DetailURL:     "http://marketplace.xbox.com/en-US/Product/Halo-4/66acd000-77fe-1000-9115-d802584111f7?SortBy=BestSelling",
		DiscoveryDate: "2026-10-18",
	}, stubs[0])

	for _, stub := range stubs {
		assert.True(t, strings.HasPrefix(stub.DetailURL, testOrigin+"/"), stub.DetailURL)
		assert.True(t, strings.HasSuffix(stub.DetailURL, "?SortBy=BestSelling"), stub.DetailURL)
	}
}

func TestParseListingWithoutRows(t *testing.T) {
	stubs := ParseListing(parseDoc(t, summaryPage("0 results")), testOrigin, "2026-10-18")
	assert.Empty(t, stubs)
}

func TestDetailURL(t *testing.T) {
	assert.Equal(t, "", DetailURL(testOrigin, "  "))
	assert.Equal(t, testOrigin+"/en-US/Product/X?SortBy=BestSelling", DetailURL(testOrigin, "/en-US/Product/X"))
	assert.Equal(t, testOrigin+"/en-US/Product/X?SortBy=BestSelling", DetailURL(testOrigin+"/", "en-US/Product/X"))
}

func TestDetailFetchURL(t *testing.T) {
	got, err := DetailFetchURL(testOrigin + "/en-US/Product/X?SortBy=BestSelling")
	require.NoError(t, err)
	for _, part := range []string{"SortBy=BestSelling", "PageSize=60", "Page=1", "sortby=BestSellingToday"} {
		assert.Contains(t, got, part)
	}
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "Halo 4", CleanName("  Halo 4™ "))
	assert.Equal(t, "Pokmon", CleanName("Pokémon"))
	assert.Equal(t, "", CleanName("   "))
}

func TestParsePrice(t *testing.T) {
	assert.Equal(t, 0.0, *ParsePrice("Free"))
	assert.Equal(t, 19.99, *ParsePrice("$19.99"))
	assert.Equal(t, 1200.0, *ParsePrice(" $1,200.00 "))
	assert.Nil(t, ParsePrice(""))
	assert.Nil(t, ParsePrice("Buy Now"))
}

func TestParseStarClass(t *testing.T) {
	v, ok := ParseStarClass("Star Star3")
	require.True(t, ok)
	assert.Equal(t, 3.0, v)

	_, ok = ParseStarClass("Star")
	assert.False(t, ok)
}

func TestStarRating(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<html><body><div id="ProductTitleZone"><div></div><div><div>`)
	for _, n := range []string{"4", "4", "4", "2"} {
		b.WriteString(`<span class="Star Star` + n + `"></span>`)
	}
	b.WriteString(`</div></div></div></body></html>`)

	assert.Equal(t, 3.5, StarRating(parseDoc(t, b.String())))
	assert.Equal(t, 0.0, StarRating(parseDoc(t, "<html></html>")))
}

func TestDocumentTextsKeepsRepeatedValues(t *testing.T) {
	doc := parseDoc(t, `<html><body><div id="ProductTitleZone"><div></div><div><div>`+
		`<span class="Star Star4"></span><span class="Star Star4"></span>`+
		`<span class="Star Star4"></span><span class="Star Star2"></span>`+
		`</div></div></div></body></html>`)

	assert.Equal(t, []string{"Star Star4", "Star Star4", "Star Star4", "Star Star2"}, doc.Texts(starClassPath))

	var empty *Document
	assert.Empty(t, empty.Texts(starClassPath))
}

func TestExcluded(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "Crimson Dragon Theme", want: true},
		{name: "E3 2013 Trailer", want: true},
		{name: "Halo 4", want: false},
		{name: "Gears of War Pics Pack", want: true},
		{name: "Banjo-Kazooie Trial Game", want: true},
		{name: "e3 2013 trailer", want: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Excluded(tt.name), tt.name)
	}
}

func TestLongerName(t *testing.T) {
	assert.Equal(t, "Halo 4: Anniversary", LongerName("Halo4", "Halo 4: Anniversary"))
	assert.Equal(t, "Forza Motorsport 6", LongerName("Forza Motorsport 6", "Forza 6"))
	assert.Equal(t, "Halo 4", LongerName("Halo 4", ""))
}

func TestParseDownloadCounters(t *testing.T) {
	got := ParseDownloadCounters([]string{"Games (12)", "Game Demos (3)", "Themes (5)"})
	assert.Equal(t, models.DownloadCounters{
		GameCount: "12",
		Demos:     "3",
		Themes:    "5",
	}, got)

	got = ParseDownloadCounters([]string{
		" Game Videos (7) ",
		"Game Add-ons (2)",
		"Gamer Pictures (9)",
		"Avatar Items (4)",
		"Xbox SmartGlass (1)",
		"Games on Demand",
	})
	assert.Equal(t, models.DownloadCounters{
		Videos:        "7",
		AddOns:        "2",
		GamerPictures: "9",
		AvatarItems:   "4",
		CompanionApps: "1",
	}, got)
}

func TestExtractProduct(t *testing.T) {
	stub := models.ItemStub{
		Name:          "Halo4",
		Category:      "Games on Demand",
		DetailURL:     testOrigin + "/en-US/Product/Halo-4/1?SortBy=BestSelling",
		DiscoveryDate: "2026-10-18",
	}

	record, ok := ExtractProduct(loadDoc(t, "detail.html"), stub)
	require.True(t, ok)

	assert.Equal(t, "Halo 4: Anniversary", record.Name)
	assert.Equal(t, "Halo4", stub.Name)
	assert.Equal(t, "Games on Demand", record.Category)
	assert.Equal(t, "343 Industries", record.Developer)
	assert.Equal(t, "Microsoft Studios", record.Publisher)
	assert.Equal(t, "Shooter", record.Genre)
	assert.Equal(t, "11/6/2012", record.ReleaseDate)
	assert.Contains(t, record.Features, "Players: 1-4")
	assert.True(t, strings.HasPrefix(record.Features, "<ul>"))
	assert.Contains(t, record.OnlineFeatures, "Online multiplayer 2-16")
	require.NotNil(t, record.Price)
	assert.Equal(t, 19.99, *record.Price)
	require.NotNil(t, record.GoldPrice)
	assert.Equal(t, 14.99, *record.GoldPrice)
	assert.Equal(t, "http://download.xbox.com/content/images/halo4/boxartlg.jpg", record.BoxArtURL)
	assert.Equal(t, "M", record.ContentRating)
	assert.Equal(t, 3.5, record.StarRating)
	assert.Equal(t, "12,345", record.ReviewCount)
	assert.Equal(t, "12", record.GameCount)
	assert.Equal(t, "3", record.Demos)
	assert.Equal(t, "5", record.Themes)
	assert.Empty(t, record.Videos)
	assert.Empty(t, record.CompanionApps)
}

func TestExtractProductIsIdempotent(t *testing.T) {
	doc := loadDoc(t, "detail.html")
	stub := models.ItemStub{Name: "Halo4", DetailURL: testOrigin + "/p?SortBy=BestSelling", DiscoveryDate: "2026-10-18"}

	first, ok := ExtractProduct(doc, stub)
	require.True(t, ok)
	second, ok := ExtractProduct(doc, stub)
	require.True(t, ok)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestExtractProductFallbacks(t *testing.T) {
	stub := models.ItemStub{Name: "Bare Game", DetailURL: testOrigin + "/p?SortBy=BestSelling"}

	record, ok := ExtractProduct(parseDoc(t, "<html><body><p>gone</p></body></html>"), stub)
	require.True(t, ok)

	assert.Equal(t, "Bare Game", record.Name)
	assert.Empty(t, record.Developer)
	assert.Empty(t, record.Features)
	assert.Empty(t, record.ContentRating)
	assert.Nil(t, record.Price)
	assert.Nil(t, record.GoldPrice)
	assert.Zero(t, record.StarRating)
	assert.Equal(t, models.DownloadCounters{}, record.DownloadCounters)
}

func TestExtractProductExcludedByLongName(t *testing.T) {
	page := `<html><body><div id="LiveZone"><div></div><div><ol><li><div>` +
		`<div><h2>Crimson Dragon Premium Theme</h2></div></div></li></ol></div></div></body></html>`

	record, ok := ExtractProduct(parseDoc(t, page), models.ItemStub{Name: "Crimson Dragon"})
	assert.False(t, ok)
	assert.Nil(t, record)
}

func TestGoldPriceRequiresGames(t *testing.T) {
	doc := loadDoc(t, "detail.html")
	assert.Nil(t, GoldPrice(doc, models.DownloadCounters{}))
	assert.Nil(t, GoldPrice(doc, models.DownloadCounters{GameCount: "0"}))
	require.NotNil(t, GoldPrice(doc, models.DownloadCounters{GameCount: "1"}))
}

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  *models.ProductRecord
		wantErr bool
	}{
		{name: "nil", record: nil, wantErr: true},
		{name: "missing name", record: &models.ProductRecord{ItemStub: models.ItemStub{DetailURL: "http://x/p"}}, wantErr: true},
		{name: "missing url", record: &models.ProductRecord{ItemStub: models.ItemStub{Name: "Halo 4"}}, wantErr: true},
		{name: "valid", record: &models.ProductRecord{ItemStub: models.ItemStub{Name: "Halo 4", DetailURL: "http://x/p"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(tt.record)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	price := 19.99
	assert.Equal(t, "19.99", FormatPrice(&price))
	assert.Equal(t, "", FormatPrice(nil))
}
