package parser

import "github.com/antchfx/xpath"

// Listing page locations.
var (
	itemCountPath      = xpath.MustCompile(`//*[@id="BodyContent"]/div[3]/div[2]/div[1]/text()`)
	sectionHeadingPath = xpath.MustCompile(`//*[@id="BodyContent"]/div[1]/h1/text()`)
	listingRowsPath    = xpath.MustCompile(`//*[@id="BodyContent"]/div[3]/ol/li`)
	rowNamePath        = xpath.MustCompile(`h2/a/text()`)
	rowLinkPath        = xpath.MustCompile(`h2/a/@href`)
)

// Detail page locations.
var (
	releaseDatePath    = xpath.MustCompile(`//*[@id="ProductPublishing"]/li[1]/text()`)
	publisherPath      = xpath.MustCompile(`//*[@id="ProductPublishing"]/li[2]/text()`)
	developerPath      = xpath.MustCompile(`//*[@id="ProductPublishing"]/li[3]/text()`)
	genrePath          = xpath.MustCompile(`//*[@id="ProductPublishing"]/li[4]/text()`)
	featuresPath       = xpath.MustCompile(`//*[@id="overview2"]/div[2]/div/div[1]/ul`)
	onlineFeaturesPath = xpath.MustCompile(`//*[@id="overview2"]/div[2]/div/div[2]/ul`)
	pricePath          = xpath.MustCompile(`//*[@id="GetProduct"]/a/span/span/text()`)
	boxArtPath         = xpath.MustCompile(`//*[@id="overview1"]/div[1]/img/@src`)
	contentRatingPath  = xpath.MustCompile(`//*[@id="ActualRating"]/text()`)
	starClassPath      = xpath.MustCompile(`//*[@id="ProductTitleZone"]/div[2]/div/span/@class`)
	reviewCountPath    = xpath.MustCompile(`//*[@id="ProductTitleZone"]/div[2]/span/text()`)
	longNamePath       = xpath.MustCompile(`//*[@id="LiveZone"]/div[2]/ol/li/div/div[1]/h2/text()`)
	goldPricePath      = xpath.MustCompile(`//*[@id="LiveZone"]/div[2]/ol/li/div/div[2]/span/span[1]/text()`)
	downloadLabelsPath = xpath.MustCompile(`//*[@id="navDownloadType"]/li/a/text()`)
)
