package postgres

import (
	"context"
	"sort"

	"recipehub/internal/models"
	"recipehub/internal/store"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// editableRecipeColumns are the columns SaveRecipe writes. likes and views
// are owned by their atomic primitives and never rewritten wholesale.
var editableRecipeColumns = []string{
	"title", "description", "ingredients", "instructions", "cuisine",
	"meal_types", "dietary_tags", "tags", "difficulty", "prep_time",
	"cook_time", "servings", "images", "is_published", "is_public", "updated_at",
}

func preloadRatings(db *gorm.DB) *gorm.DB {
	return db.Preload("Ratings", func(db *gorm.DB) *gorm.DB {
		return db.Order("rated_at ASC, id ASC")
	})
}

func ensureRecipeSets(r *models.Recipe) {
	if r.MealTypes == nil {
		r.MealTypes = pq.StringArray{}
	}
	if r.DietaryTags == nil {
		r.DietaryTags = pq.StringArray{}
	}
	if r.Tags == nil {
		r.Tags = pq.StringArray{}
	}
	if r.Images == nil {
		r.Images = pq.StringArray{}
	}
	if r.Likes == nil {
		r.Likes = pq.Int64Array{}
	}
}

func (s *Store) CreateRecipe(ctx context.Context, r *models.Recipe) error {
	ensureRecipeSets(r)
	return s.db.WithContext(ctx).Omit("Ratings").Create(r).Error
}

func (s *Store) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var r models.Recipe
	if err := s.db.WithContext(ctx).Scopes(preloadRatings).First(&r, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *Store) SaveRecipe(ctx context.Context, r *models.Recipe) error {
	ensureRecipeSets(r)
	res := s.db.WithContext(ctx).Model(r).Select(editableRecipeColumns).Updates(r)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteRecipe(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, id).Error
	})
}

func (s *Store) UpsertRating(ctx context.Context, rating *models.Rating) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "recipe_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "review", "rated_at"}),
	}).Create(rating).Error
}

func (s *Store) ListRatings(ctx context.Context, recipeID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	err := s.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Order("rated_at ASC, id ASC").
		Find(&ratings).Error
	return ratings, err
}

func (s *Store) ToggleRecipeLike(ctx context.Context, recipeID, userID uint) (store.Toggle, error) {
	return s.toggleLike(ctx, "recipes", recipeID, userID)
}

func (s *Store) IncrementViews(ctx context.Context, recipeID uint) error {
	res := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", recipeID).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListRecipesByAuthor(ctx context.Context, authorID uint, includeHidden bool, offset, limit int) ([]models.Recipe, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", authorID)
	if !includeHidden {
		base = base.Scopes(visible)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := base.Scopes(preloadRatings).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&recipes).Error
	return recipes, total, err
}

// ListRecipesByIDs returns the recipes in the order of ids, skipping
// missing ones.
func (s *Store) ListRecipesByIDs(ctx context.Context, ids []uint) ([]models.Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var recipes []models.Recipe
	if err := s.db.WithContext(ctx).Scopes(preloadRatings).Where("id IN ?", ids).Find(&recipes).Error; err != nil {
		return nil, err
	}
	pos := make(map[uint]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	sort.Slice(recipes, func(i, j int) bool { return pos[recipes[i].ID] < pos[recipes[j].ID] })
	return recipes, nil
}

func (s *Store) Categories(ctx context.Context) (*store.Categories, error) {
	db := s.db.WithContext(ctx)
	cats := &store.Categories{}

	if err := db.Model(&models.Recipe{}).Scopes(visible).
		Where("cuisine <> ''").Distinct("cuisine").Order("cuisine").
		Pluck("cuisine", &cats.Cuisines).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Recipe{}).Scopes(visible).
		Distinct("difficulty").Order("difficulty").
		Pluck("difficulty", &cats.Difficulties).Error; err != nil {
		return nil, err
	}

	arrays := map[string]*[]string{
		"meal_types":   &cats.MealTypes,
		"dietary_tags": &cats.DietaryTags,
		"tags":         &cats.Tags,
	}
	for column, dst := range arrays {
		err := db.Raw(
			"SELECT DISTINCT v FROM recipes, unnest(" + column + ") AS v " +
				"WHERE is_published = TRUE AND is_public = TRUE AND v <> '' ORDER BY v",
		).Scan(dst).Error
		if err != nil {
			return nil, err
		}
	}
	return cats, nil
}
