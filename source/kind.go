package source

import (
	"strings"

	"github.com/samber/lo"
)

// Metadata kinds understood by the metadata provider.
const (
	MetadataMovie = "movie"
	MetadataTV    = "tv"
)

// IsSeries is the single rule deciding whether a record is looked up as a tv show.
func IsSeries(r *Record) bool {
	switch strings.ToLower(r.Type) {
	case "series", "hoathinh":
		return true
	}
	return r.Episodes() > 1
}

// MetadataKind maps a record to the metadata provider's media type.
func MetadataKind(r *Record) string {
	if IsSeries(r) {
		return MetadataTV
	}
	return MetadataMovie
}

var animeTitleKeywords = []string{
	"anime", "manga", "naruto", "one piece", "dragon ball", "attack on titan",
	"demon slayer", "jujutsu kaisen", "my hero academia", "pokemon", "studio ghibli",
	"bleach", "hunter x hunter", "death note", "fullmetal alchemist", "evangelion",
	"cowboy bebop", "spirited away", "totoro", "akira", "princess mononoke",
}

var (
	animeCountryNames = []string{"nhật bản", "japan", "hàn quốc"}
	animeCountrySlugs = []string{"nhat-ban", "han-quoc"}

	animeCategoryNames = []string{"hoạt hình", "anime", "viễn tưởng"}
	animeCategorySlugs = []string{"hoat-hinh", "vien-tuong"}
)

// IsAnime guesses whether a record is anime. Animation type always is; otherwise
// an anime title keyword is enough, and an anime-producing country counts
// together with an anime-related category.
func IsAnime(r *Record) bool {
	if strings.EqualFold(r.Type, "hoathinh") {
		return true
	}

	title := strings.ToLower(r.Title)
	if title == "" {
		title = strings.ToLower(r.OriginalTitle)
	}
	hasTitle := containsAny(title, animeTitleKeywords)
	if hasTitle {
		return true
	}

	hasCountry := lo.SomeBy(r.Countries, func(t Tag) bool {
		return tagMatches(t, animeCountryNames, animeCountrySlugs)
	})
	hasCategory := lo.SomeBy(r.Categories, func(t Tag) bool {
		return tagMatches(t, animeCategoryNames, animeCategorySlugs)
	})
	return hasCountry && hasCategory
}

func tagMatches(t Tag, names, slugs []string) bool {
	return containsAny(strings.ToLower(t.Name), names) || containsAny(strings.ToLower(t.Slug), slugs)
}

func containsAny(s string, needles []string) bool {
	return lo.SomeBy(needles, func(n string) bool {
		return strings.Contains(s, n)
	})
}
