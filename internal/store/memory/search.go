package memory

import (
	"cmp"
	"context"
	"sort"
	"strings"

	"recipehub/internal/models"
	"recipehub/internal/store"
)

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func anyOf(have []string, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func matches(r *models.Recipe, f store.RecipeFilter) bool {
	if f.Keyword != "" &&
		!containsFold(r.Title, f.Keyword) &&
		!containsFold(r.Description, f.Keyword) &&
		!containsFold(strings.Join(r.Tags, " "), f.Keyword) {
		return false
	}
	for _, want := range f.Ingredients {
		found := false
		for _, ing := range r.Ingredients {
			if containsFold(ing.Name, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Cuisine != "" && !strings.EqualFold(r.Cuisine, f.Cuisine) {
		return false
	}
	if f.Difficulty != "" && r.Difficulty != f.Difficulty {
		return false
	}
	if len(f.MealTypes) > 0 && !anyOf(r.MealTypes, f.MealTypes) {
		return false
	}
	if len(f.DietaryTags) > 0 && !anyOf(r.DietaryTags, f.DietaryTags) {
		return false
	}
	if f.MaxTotalTime > 0 && r.TotalTime() > f.MaxTotalTime {
		return false
	}
	if f.AuthorID != 0 && r.AuthorID != f.AuthorID {
		return false
	}
	return true
}

// mean is the unrounded rating average, matching the SQL AVG ordering.
func mean(ratings []models.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Value
	}
	return float64(sum) / float64(len(ratings))
}

// compare orders a and b by key, ascending. Equal keys return 0.
func (s *Store) compare(k store.SortKey, a, b *models.Recipe) int {
	switch k {
	case store.SortRating:
		return cmp.Compare(mean(s.ratings[a.ID]), mean(s.ratings[b.ID]))
	case store.SortTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case store.SortPrepTime:
		return cmp.Compare(a.PrepTime, b.PrepTime)
	case store.SortCookTime:
		return cmp.Compare(a.CookTime, b.CookTime)
	case store.SortPopular:
		return cmp.Compare(a.LikesCount(), b.LikesCount())
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func (s *Store) SearchRecipes(_ context.Context, q store.RecipeQuery) ([]models.Recipe, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Recipe
	for _, r := range s.recipes {
		if r.Visible() && matches(r, q.Filter) {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		c := s.compare(q.Sort, matched[i], matched[j])
		if c == 0 {
			c = cmp.Compare(matched[i].ID, matched[j].ID)
		}
		if q.Desc {
			return c > 0
		}
		return c < 0
	})

	var out []models.Recipe
	for _, r := range window(matched, q.Offset, q.Limit) {
		out = append(out, *s.withRatings(r))
	}
	return out, int64(len(matched)), nil
}
