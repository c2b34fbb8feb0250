package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"recipehub/internal/models"
	"recipehub/internal/store"
	"recipehub/internal/utils"
)

const categoriesKey = "categories"

// SearchParams is a discovery request as received from a client.
type SearchParams struct {
	Filter store.RecipeFilter
	Sort   string // one of the store sort keys, default newest
	Order  string // asc or desc, default depends on Sort
	Page   Page
}

type DiscoveryService struct {
	store store.Recipes
	cache *utils.Cache[*store.Categories]
}

func NewDiscoveryService(st store.Recipes, categoriesTTL time.Duration) (*DiscoveryService, error) {
	cache, err := utils.NewCache[*store.Categories](1, categoriesTTL)
	if err != nil {
		return nil, err
	}
	return &DiscoveryService{store: st, cache: cache}, nil
}

func parseOrder(order string, key store.SortKey) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "":
		return key.DefaultDesc(), nil
	case "desc":
		return true, nil
	case "asc":
		return false, nil
	}
	return false, invalidf("order must be asc or desc")
}

// Search returns the visible recipes matching every given predicate.
func (s *DiscoveryService) Search(ctx context.Context, p SearchParams, viewer uint) ([]RecipeView, Pagination, error) {
	key, ok := store.ParseSortKey(p.Sort)
	if !ok {
		return nil, Pagination{}, invalidf("unknown sort %q", p.Sort)
	}
	desc, err := parseOrder(p.Order, key)
	if err != nil {
		return nil, Pagination{}, err
	}
	filter := p.Filter.Normalize()
	if filter.Difficulty != "" && !filter.Difficulty.Valid() {
		return nil, Pagination{}, invalidf("difficulty must be Easy, Medium or Hard")
	}

	page := p.Page.Normalize()
	recipes, total, err := s.store.SearchRecipes(ctx, store.RecipeQuery{
		Filter: filter,
		Sort:   key,
		Desc:   desc,
		Offset: page.Offset(),
		Limit:  page.Limit,
	})
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("search recipes: %w", err)
	}
	return recipeViews(recipes, viewer), NewPagination(page, total), nil
}

// Categories returns the classification values in use, served from a
// short-lived cache.
func (s *DiscoveryService) Categories(ctx context.Context) (*store.Categories, error) {
	if cats, ok := s.cache.Get(categoriesKey); ok {
		return cats, nil
	}
	cats, err := s.store.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	if cats.Difficulties == nil {
		cats.Difficulties = []models.Difficulty{}
	}
	s.cache.Set(categoriesKey, cats)
	return cats, nil
}

func (s *DiscoveryService) InvalidateCategories() {
	s.cache.Delete(categoriesKey)
}
