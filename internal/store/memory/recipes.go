package memory

import (
	"context"
	"sort"

	"recipehub/internal/models"
	"recipehub/internal/store"

	"gorm.io/datatypes"
)

func cloneRecipe(r *models.Recipe) *models.Recipe {
	c := *r
	c.Ingredients = append(datatypes.JSONSlice[models.Ingredient](nil), r.Ingredients...)
	c.Instructions = append(datatypes.JSONSlice[models.Instruction](nil), r.Instructions...)
	c.MealTypes = cloneStrings(r.MealTypes)
	c.DietaryTags = cloneStrings(r.DietaryTags)
	c.Tags = cloneStrings(r.Tags)
	c.Images = cloneStrings(r.Images)
	c.Likes = cloneIDs(r.Likes)
	c.Ratings = nil
	return &c
}

// withRatings returns a copy of r with its ratings attached, oldest first.
func (s *Store) withRatings(r *models.Recipe) *models.Recipe {
	c := cloneRecipe(r)
	c.Ratings = s.sortedRatings(r.ID)
	return c
}

func (s *Store) sortedRatings(recipeID uint) []models.Rating {
	src := s.ratings[recipeID]
	if len(src) == 0 {
		return nil
	}
	out := append([]models.Rating(nil), src...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].RatedAt.Equal(out[j].RatedAt) {
			return out[i].RatedAt.Before(out[j].RatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) CreateRecipe(_ context.Context, r *models.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = s.nextID()
	s.stamp(&r.CreatedAt, &r.UpdatedAt)
	s.recipes[r.ID] = cloneRecipe(r)
	return nil
}

func (s *Store) GetRecipe(_ context.Context, id uint) (*models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.withRatings(r), nil
}

// SaveRecipe writes the editable fields only. Likes and views are left
// to their own primitives.
func (s *Store) SaveRecipe(_ context.Context, r *models.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.recipes[r.ID]
	if !ok {
		return store.ErrNotFound
	}
	next := cloneRecipe(r)
	next.AuthorID = cur.AuthorID
	next.Likes = cur.Likes
	next.Views = cur.Views
	next.CreatedAt = cur.CreatedAt
	s.stamp(nil, &next.UpdatedAt)
	r.UpdatedAt = next.UpdatedAt
	s.recipes[r.ID] = next
	return nil
}

func (s *Store) DeleteRecipe(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.ratings, id)
	delete(s.recipes, id)
	return nil
}

func (s *Store) UpsertRating(_ context.Context, rating *models.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[rating.RecipeID]; !ok {
		return store.ErrNotFound
	}
	list := s.ratings[rating.RecipeID]
	for i := range list {
		if list[i].UserID == rating.UserID {
			rating.ID = list[i].ID
			list[i].Value = rating.Value
			list[i].Review = rating.Review
			list[i].RatedAt = rating.RatedAt
			return nil
		}
	}
	rating.ID = s.nextID()
	s.ratings[rating.RecipeID] = append(list, *rating)
	return nil
}

func (s *Store) ListRatings(_ context.Context, recipeID uint) ([]models.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedRatings(recipeID), nil
}

func (s *Store) ToggleRecipeLike(_ context.Context, recipeID, userID uint) (store.Toggle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recipes[recipeID]
	if !ok {
		return store.Toggle{}, store.ErrNotFound
	}
	return toggle(&r.Likes, userID), nil
}

func (s *Store) IncrementViews(_ context.Context, recipeID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recipes[recipeID]
	if !ok {
		return store.ErrNotFound
	}
	r.Views++
	return nil
}

func (s *Store) ListRecipesByAuthor(_ context.Context, authorID uint, includeHidden bool, offset, limit int) ([]models.Recipe, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Recipe
	for _, r := range s.recipes {
		if r.AuthorID != authorID || (!includeHidden && !r.Visible()) {
			continue
		}
		matched = append(matched, r)
	}
	sort.Slice(matched, func(i, j int) bool { return newerFirst(matched[i], matched[j]) })

	var out []models.Recipe
	for _, r := range window(matched, offset, limit) {
		out = append(out, *s.withRatings(r))
	}
	return out, int64(len(matched)), nil
}

func (s *Store) ListRecipesByIDs(_ context.Context, ids []uint) ([]models.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Recipe
	for _, id := range ids {
		if r, ok := s.recipes[id]; ok {
			out = append(out, *s.withRatings(r))
		}
	}
	return out, nil
}

func (s *Store) Categories(_ context.Context) (*store.Categories, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cuisines := map[string]struct{}{}
	mealTypes := map[string]struct{}{}
	dietary := map[string]struct{}{}
	tags := map[string]struct{}{}
	difficulties := map[string]struct{}{}

	collect := func(dst map[string]struct{}, vals ...string) {
		for _, v := range vals {
			if v != "" {
				dst[v] = struct{}{}
			}
		}
	}
	for _, r := range s.recipes {
		if !r.Visible() {
			continue
		}
		collect(cuisines, r.Cuisine)
		collect(difficulties, string(r.Difficulty))
		collect(mealTypes, r.MealTypes...)
		collect(dietary, r.DietaryTags...)
		collect(tags, r.Tags...)
	}

	cats := &store.Categories{
		Cuisines:    sortedKeys(cuisines),
		MealTypes:   sortedKeys(mealTypes),
		DietaryTags: sortedKeys(dietary),
		Tags:        sortedKeys(tags),
	}
	for _, d := range sortedKeys(difficulties) {
		cats.Difficulties = append(cats.Difficulties, models.Difficulty(d))
	}
	return cats, nil
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func newerFirst(a, b *models.Recipe) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
