package store

import (
	"strings"

	"recipehub/internal/models"
)

type SortKey string

const (
	SortNewest   SortKey = "newest"
	SortOldest   SortKey = "oldest"
	SortRating   SortKey = "rating"
	SortTitle    SortKey = "title"
	SortPrepTime SortKey = "prepTime"
	SortCookTime SortKey = "cookTime"
	SortPopular  SortKey = "popular"
)

// ParseSortKey maps a query value to a sort key, defaulting to newest.
func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(s); k {
	case SortNewest, SortOldest, SortRating, SortTitle, SortPrepTime, SortCookTime, SortPopular:
		return k, true
	case "":
		return SortNewest, true
	}
	return SortNewest, false
}

// DefaultDesc is the natural direction of a sort key when none is given.
func (k SortKey) DefaultDesc() bool {
	switch k {
	case SortOldest, SortTitle, SortPrepTime, SortCookTime:
		return false
	}
	return true
}

// RecipeFilter holds the optional discovery predicates. Zero values mean
// "no constraint". Visibility is not part of the filter.
type RecipeFilter struct {
	Keyword      string
	Ingredients  []string // every entry must match some ingredient name
	Cuisine      string
	Difficulty   models.Difficulty
	MealTypes    []string // match any
	DietaryTags  []string // match any
	MaxTotalTime int      // prep + cook, minutes
	AuthorID     uint
}

type RecipeQuery struct {
	Filter RecipeFilter
	Sort   SortKey
	Desc   bool
	Offset int
	Limit  int
}

// Normalize trims and lowercases free-text inputs and drops empty entries.
func (f RecipeFilter) Normalize() RecipeFilter {
	f.Keyword = strings.TrimSpace(f.Keyword)
	f.Cuisine = strings.TrimSpace(f.Cuisine)
	f.Ingredients = cleanList(f.Ingredients, true)
	f.MealTypes = cleanList(f.MealTypes, false)
	f.DietaryTags = cleanList(f.DietaryTags, false)
	if f.MaxTotalTime < 0 {
		f.MaxTotalTime = 0
	}
	return f
}

func cleanList(in []string, lower bool) []string {
	var out []string
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if lower {
			v = strings.ToLower(v)
		}
		out = append(out, v)
	}
	return out
}

// Categories is the live set of classification values used by visible
// recipes.
type Categories struct {
	Cuisines     []string            `json:"cuisines"`
	MealTypes    []string            `json:"meal_types"`
	DietaryTags  []string            `json:"dietary_tags"`
	Difficulties []models.Difficulty `json:"difficulties"`
	Tags         []string            `json:"tags"`
}
