package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"recipehub/internal/logging"
	"recipehub/internal/models"
	"recipehub/internal/store"
	"recipehub/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
)

const (
	maxTitleLength = 200
	maxNoteLength  = 500
)

// visibleRecipe loads a recipe that viewer may see. Unpublished or private
// recipes exist only for their author.
func visibleRecipe(ctx context.Context, st store.Recipes, id, viewer uint) (*models.Recipe, error) {
	r, err := st.GetRecipe(ctx, id)
	if err != nil {
		return nil, storeErr(err, "recipe")
	}
	if !r.Visible() && r.AuthorID != viewer {
		return nil, notFoundf("recipe")
	}
	return r, nil
}

// RecipeInput is the editable part of a recipe.
type RecipeInput struct {
	Title        string
	Description  string
	Ingredients  []models.Ingredient
	Instructions []models.Instruction
	Cuisine      string
	MealTypes    []string
	DietaryTags  []string
	Tags         []string
	Difficulty   models.Difficulty
	PrepTime     int
	CookTime     int
	Servings     int
	Images       []string
	IsPublished  *bool
	IsPublic     *bool
}

func cleanSet(in []string) pq.StringArray {
	seen := make(map[string]bool, len(in))
	out := pq.StringArray{}
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// apply validates in and writes it onto r.
func (in RecipeInput) apply(r *models.Recipe) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return invalidf("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return invalidf("title must be at most %d characters", maxTitleLength)
	}
	if in.Difficulty == "" {
		in.Difficulty = models.DifficultyEasy
	}
	if !in.Difficulty.Valid() {
		return invalidf("difficulty must be Easy, Medium or Hard")
	}
	if in.PrepTime < 0 || in.CookTime < 0 {
		return invalidf("prep and cook time must not be negative")
	}
	if in.Servings < 0 {
		return invalidf("servings must not be negative")
	}
	if in.Servings == 0 {
		in.Servings = 1
	}

	ingredients := make([]models.Ingredient, 0, len(in.Ingredients))
	for _, ing := range in.Ingredients {
		ing.Name = strings.TrimSpace(ing.Name)
		if ing.Name == "" {
			return invalidf("every ingredient needs a name")
		}
		ing.Quantity = strings.TrimSpace(ing.Quantity)
		ing.Unit = strings.TrimSpace(ing.Unit)
		ingredients = append(ingredients, ing)
	}

	steps := make([]models.Instruction, 0, len(in.Instructions))
	for _, st := range in.Instructions {
		st.Text = strings.TrimSpace(st.Text)
		if st.Text == "" {
			return invalidf("instruction steps must not be empty")
		}
		steps = append(steps, st)
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Step < steps[j].Step })
	for i := range steps {
		steps[i].Step = i + 1
	}

	r.Title = title
	r.Description = strings.TrimSpace(in.Description)
	r.Ingredients = ingredients
	r.Instructions = steps
	r.Cuisine = strings.TrimSpace(in.Cuisine)
	r.MealTypes = cleanSet(in.MealTypes)
	r.DietaryTags = cleanSet(in.DietaryTags)
	r.Tags = cleanSet(in.Tags)
	r.Difficulty = in.Difficulty
	r.PrepTime = in.PrepTime
	r.CookTime = in.CookTime
	r.Servings = in.Servings
	r.Images = cleanSet(in.Images)
	if in.IsPublished != nil {
		r.IsPublished = *in.IsPublished
	}
	if in.IsPublic != nil {
		r.IsPublic = *in.IsPublic
	}
	return nil
}

// RecipeShare is the content of a share-by-email.
type RecipeShare struct {
	SenderName  string
	RecipeTitle string
	Link        string
	Note        string
}

// ShareMailer delivers share emails without blocking the caller.
type ShareMailer interface {
	SendRecipeShare(to string, share RecipeShare)
}

// RecipeService covers recipe authoring, deletion cascade and sharing.
type RecipeService struct {
	store      store.Store
	engagement *EngagementService
	discovery  *DiscoveryService
	mailer     ShareMailer
	siteURL    string
	validate   *validator.Validate
}

func NewRecipeService(st store.Store, engagement *EngagementService, discovery *DiscoveryService, mailer ShareMailer, siteURL string) *RecipeService {
	return &RecipeService{
		store:      st,
		engagement: engagement,
		discovery:  discovery,
		mailer:     mailer,
		siteURL:    strings.TrimRight(siteURL, "/"),
		validate:   validator.New(),
	}
}

func (s *RecipeService) Create(ctx context.Context, authorID uint, in RecipeInput) (*RecipeView, error) {
	if _, err := s.store.GetUser(ctx, authorID); err != nil {
		return nil, storeErr(err, "author")
	}
	r := &models.Recipe{AuthorID: authorID, IsPublished: true, IsPublic: true}
	if err := in.apply(r); err != nil {
		return nil, err
	}
	if err := s.store.CreateRecipe(ctx, r); err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	s.discovery.InvalidateCategories()

	logging.Ctx(ctx).Info().Uint("recipe_id", r.ID).Uint("author_id", authorID).Msg("Recipe created")
	v := NewRecipeView(r, authorID).withHTML()
	return &v, nil
}

// Get returns a recipe for viewer and counts the view.
func (s *RecipeService) Get(ctx context.Context, id, viewer uint) (*RecipeView, error) {
	r, err := visibleRecipe(ctx, s.store, id, viewer)
	if err != nil {
		return nil, err
	}
	s.engagement.RecordView(ctx, r, viewer)

	v := NewRecipeView(r, viewer).withHTML()
	if n, err := s.store.CountComments(ctx, id); err == nil {
		v.CommentsCount = &n
	}
	return &v, nil
}

func (s *RecipeService) owned(ctx context.Context, id, actor uint) (*models.Recipe, error) {
	r, err := s.store.GetRecipe(ctx, id)
	if err != nil {
		return nil, storeErr(err, "recipe")
	}
	if r.AuthorID != actor {
		if !r.Visible() {
			return nil, notFoundf("recipe")
		}
		return nil, forbiddenf("only the author can change recipe %d", id)
	}
	return r, nil
}

func (s *RecipeService) Update(ctx context.Context, id, actor uint, in RecipeInput) (*RecipeView, error) {
	r, err := s.owned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if err := in.apply(r); err != nil {
		return nil, err
	}
	if err := s.store.SaveRecipe(ctx, r); err != nil {
		return nil, storeErr(err, "recipe")
	}
	s.discovery.InvalidateCategories()

	v := NewRecipeView(r, actor).withHTML()
	return &v, nil
}

// Delete removes a recipe with everything hanging off it. Dependents go
// first so a failed delete can simply be retried.
func (s *RecipeService) Delete(ctx context.Context, id, actor uint) error {
	if _, err := s.owned(ctx, id, actor); err != nil {
		return err
	}
	if err := s.store.DeleteRecipeComments(ctx, id); err != nil {
		return fmt.Errorf("delete recipe comments: %w", err)
	}
	if err := s.store.DeleteForRecipe(ctx, id); err != nil {
		return fmt.Errorf("delete recipe notifications: %w", err)
	}
	if err := s.store.PurgeFavorite(ctx, id); err != nil {
		return fmt.Errorf("purge favorites: %w", err)
	}
	if err := s.store.DeleteRecipe(ctx, id); err != nil {
		return storeErr(err, "recipe")
	}
	s.discovery.InvalidateCategories()

	logging.Ctx(ctx).Info().Uint("recipe_id", id).Msg("Recipe deleted")
	return nil
}

// ListByAuthor pages an author's recipes. The author sees hidden ones too.
func (s *RecipeService) ListByAuthor(ctx context.Context, authorID, viewer uint, page Page) ([]RecipeView, Pagination, error) {
	if _, err := s.store.GetUser(ctx, authorID); err != nil {
		return nil, Pagination{}, storeErr(err, "user")
	}
	page = page.Normalize()
	recipes, total, err := s.store.ListRecipesByAuthor(ctx, authorID, authorID == viewer, page.Offset(), page.Limit)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list recipes: %w", err)
	}
	return recipeViews(recipes, viewer), NewPagination(page, total), nil
}

// Share emails a link to a recipe. Delivery happens in the background and
// its failure is only logged.
func (s *RecipeService) Share(ctx context.Context, recipeID, senderID uint, to, note string) error {
	to = strings.TrimSpace(to)
	if err := s.validate.Var(to, "required,email"); err != nil {
		return invalidf("a valid email address is required")
	}
	note = utils.SanitizeText(note)
	if utf8.RuneCountInString(note) > maxNoteLength {
		return invalidf("note must be at most %d characters", maxNoteLength)
	}

	r, err := visibleRecipe(ctx, s.store, recipeID, senderID)
	if err != nil {
		return err
	}
	sender, err := s.store.GetUser(ctx, senderID)
	if err != nil {
		return storeErr(err, "user")
	}

	s.mailer.SendRecipeShare(to, RecipeShare{
		SenderName:  sender.Name(),
		RecipeTitle: r.Title,
		Link:        fmt.Sprintf("%s/recipes/%d", s.siteURL, r.ID),
		Note:        note,
	})
	return nil
}
