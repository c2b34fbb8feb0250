package postgres

import (
	"context"
	"strings"

	"recipehub/internal/models"
	"recipehub/internal/store"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// visible restricts a query to recipes discovery may show.
func visible(db *gorm.DB) *gorm.DB {
	return db.Where("recipes.is_published = ? AND recipes.is_public = ?", true, true)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func filterScope(f store.RecipeFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Keyword != "" {
			kw := containsPattern(f.Keyword)
			db = db.Where(
				"(recipes.title ILIKE ? OR recipes.description ILIKE ? OR array_to_string(recipes.tags, ' ') ILIKE ?)",
				kw, kw, kw,
			)
		}
		for _, ing := range f.Ingredients {
			db = db.Where(
				"EXISTS (SELECT 1 FROM jsonb_array_elements(recipes.ingredients) AS ing WHERE ing->>'name' ILIKE ?)",
				containsPattern(ing),
			)
		}
		if f.Cuisine != "" {
			db = db.Where("LOWER(recipes.cuisine) = LOWER(?)", f.Cuisine)
		}
		if f.Difficulty != "" {
			db = db.Where("recipes.difficulty = ?", f.Difficulty)
		}
		if len(f.MealTypes) > 0 {
			db = db.Where("recipes.meal_types && ?", pq.StringArray(f.MealTypes))
		}
		if len(f.DietaryTags) > 0 {
			db = db.Where("recipes.dietary_tags && ?", pq.StringArray(f.DietaryTags))
		}
		if f.MaxTotalTime > 0 {
			db = db.Where("(recipes.prep_time + recipes.cook_time) <= ?", f.MaxTotalTime)
		}
		if f.AuthorID != 0 {
			db = db.Where("recipes.author_id = ?", f.AuthorID)
		}
		return db
	}
}

// sortExpr maps a sort key to its SQL expression. The rating average is
// computed from the ratings table at query time.
func sortExpr(k store.SortKey) string {
	switch k {
	case store.SortRating:
		return "(SELECT COALESCE(AVG(ratings.value), 0) FROM ratings WHERE ratings.recipe_id = recipes.id)"
	case store.SortTitle:
		return "LOWER(recipes.title)"
	case store.SortPrepTime:
		return "recipes.prep_time"
	case store.SortCookTime:
		return "recipes.cook_time"
	case store.SortPopular:
		return "cardinality(recipes.likes)"
	default:
		return "recipes.created_at"
	}
}

func orderClause(k store.SortKey, desc bool) string {
	dir := " ASC"
	if desc {
		dir = " DESC"
	}
	return sortExpr(k) + dir + ", recipes.id" + dir
}

func (s *Store) SearchRecipes(ctx context.Context, q store.RecipeQuery) ([]models.Recipe, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.Recipe{}).Scopes(visible, filterScope(q.Filter))

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, nil
	}

	var recipes []models.Recipe
	err := base.Scopes(preloadRatings).
		Order(orderClause(q.Sort, q.Desc)).
		Offset(q.Offset).Limit(q.Limit).
		Find(&recipes).Error
	return recipes, total, err
}
