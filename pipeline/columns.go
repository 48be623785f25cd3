package pipeline

import (
	"strconv"

	"github.com/aluiziolira/go-scrape-marketplace/models"
	"github.com/aluiziolira/go-scrape-marketplace/parser"
)

// recordColumns is the flat column order shared by the CSV and SQL outputs.
var recordColumns = []string{
	"name",
	"category",
	"detail_url",
	"discovery_date",
	"developer",
	"publisher",
	"genre",
	"features",
	"online_features",
	"price",
	"gold_price",
	"box_art_url",
	"content_rating",
	"star_rating",
	"review_count",
	"release_date",
	"game_count",
	"demos",
	"videos",
	"add_ons",
	"themes",
	"gamer_pictures",
	"avatar_items",
	"companion_apps",
}

func recordRow(r *models.ProductRecord) []string {
	return []string{
		r.Name,
		r.Category,
		r.DetailURL,
		r.DiscoveryDate,
		r.Developer,
		r.Publisher,
		r.Genre,
		r.Features,
		r.OnlineFeatures,
		parser.FormatPrice(r.Price),
		parser.FormatPrice(r.GoldPrice),
		r.BoxArtURL,
		r.ContentRating,
		strconv.FormatFloat(r.StarRating, 'f', -1, 64),
		r.ReviewCount,
		r.ReleaseDate,
		r.GameCount,
		r.Demos,
		r.Videos,
		r.AddOns,
		r.Themes,
		r.GamerPictures,
		r.AvatarItems,
		r.CompanionApps,
	}
}

// recordArgs mirrors recordRow with typed numeric columns for SQL.
func recordArgs(r *models.ProductRecord) []any {
	row := recordRow(r)
	args := make([]any, len(row))
	for i, v := range row {
		args[i] = v
	}
	args[9] = nullablePrice(r.Price)
	args[10] = nullablePrice(r.GoldPrice)
	args[13] = r.StarRating
	return args
}

func nullablePrice(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
