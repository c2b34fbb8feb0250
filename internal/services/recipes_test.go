package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"recipehub/internal/models"
)

func TestCreateRecipe(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")

	v, err := f.recipes.Create(f.ctx, author.ID, RecipeInput{
		Title:       "  Shakshuka ",
		Description: "Eggs in **spiced** tomato",
		Ingredients: []models.Ingredient{{Name: " Eggs ", Quantity: "4"}},
		Instructions: []models.Instruction{
			{Step: 7, Text: "Crack the eggs"},
			{Step: 2, Text: "Simmer the sauce"},
		},
		Tags:     []string{"brunch", " brunch", ""},
		PrepTime: 5,
		CookTime: 20,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v.Title != "Shakshuka" || !v.IsPublished || !v.IsPublic || v.Difficulty != models.DifficultyEasy || v.Servings != 1 {
		t.Errorf("defaults not applied: %+v", v.Recipe)
	}
	if v.Instructions[0].Step != 1 || v.Instructions[0].Text != "Simmer the sauce" || v.Instructions[1].Step != 2 {
		t.Errorf("steps = %+v", v.Instructions)
	}
	if len(v.Tags) != 1 || v.TotalTime != 25 {
		t.Errorf("tags = %v total = %d", v.Tags, v.TotalTime)
	}
	if !strings.Contains(v.DescriptionHTML, "<strong>spiced</strong>") {
		t.Errorf("description html = %q", v.DescriptionHTML)
	}

	tests := []struct {
		name string
		in   RecipeInput
	}{
		{"no title", RecipeInput{}},
		{"long title", RecipeInput{Title: strings.Repeat("x", 201)}},
		{"bad difficulty", RecipeInput{Title: "x", Difficulty: "Extreme"}},
		{"negative time", RecipeInput{Title: "x", PrepTime: -1}},
		{"blank ingredient", RecipeInput{Title: "x", Ingredients: []models.Ingredient{{Name: " "}}}},
		{"blank step", RecipeInput{Title: "x", Instructions: []models.Instruction{{Step: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.recipes.Create(f.ctx, author.ID, tt.in); !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}

	if _, err := f.recipes.Create(f.ctx, 999, RecipeInput{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing author err = %v", err)
	}
}

func TestGetCountsForeignViews(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	guest := f.user(t, "guest")
	r := f.recipe(t, author, "Dal")

	if _, err := f.recipes.Get(f.ctx, r.ID, author.ID); err != nil {
		t.Fatal(err)
	}
	v, err := f.recipes.Get(f.ctx, r.ID, guest.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.recipes.Get(f.ctx, r.ID, 0); err != nil {
		t.Fatal(err)
	}
	if v.Views != 1 || v.CommentsCount == nil || *v.CommentsCount != 0 {
		t.Errorf("view = %+v", v)
	}
	stored, _ := f.store.GetRecipe(f.ctx, r.ID)
	if stored.Views != 2 {
		t.Errorf("views = %d, want 2", stored.Views)
	}
}

func TestHiddenRecipeAccess(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	guest := f.user(t, "guest")
	private := false
	v, _ := f.recipes.Create(f.ctx, author.ID, RecipeInput{Title: "Family secret", IsPublic: &private})

	if _, err := f.recipes.Get(f.ctx, v.ID, guest.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("guest get err = %v", err)
	}
	if _, err := f.recipes.Get(f.ctx, v.ID, author.ID); err != nil {
		t.Errorf("author get err = %v", err)
	}
	if _, err := f.recipes.Update(f.ctx, v.ID, guest.ID, RecipeInput{Title: "mine"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("guest update err = %v", err)
	}
	if _, err := f.comments.Add(f.ctx, v.ID, guest.ID, "hi", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("guest comment err = %v", err)
	}

	list, page, _ := f.recipes.ListByAuthor(f.ctx, author.ID, guest.ID, Page{})
	if len(list) != 0 || page.Total != 0 {
		t.Errorf("guest sees %+v", list)
	}
	list, _, _ = f.recipes.ListByAuthor(f.ctx, author.ID, author.ID, Page{})
	if len(list) != 1 {
		t.Errorf("author sees %d recipes", len(list))
	}
}

func TestUpdateRecipe(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	guest := f.user(t, "guest")
	fan := f.user(t, "fan")
	r := f.recipe(t, author, "Risotto")
	if _, err := f.engagement.ToggleLike(f.ctx, r.ID, fan.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := f.recipes.Update(f.ctx, r.ID, guest.ID, RecipeInput{Title: "mine"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("guest update err = %v", err)
	}
	v, err := f.recipes.Update(f.ctx, r.ID, author.ID, RecipeInput{Title: "Mushroom risotto", Difficulty: models.DifficultyMedium})
	if err != nil {
		t.Fatal(err)
	}
	if v.Title != "Mushroom risotto" || v.LikesCount != 1 || v.Difficulty != models.DifficultyMedium {
		t.Errorf("updated = %+v", v)
	}
}

func TestDeleteRecipeCascades(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	fan := f.user(t, "fan")
	r := f.recipe(t, author, "Goulash")
	keep := f.recipe(t, author, "Strudel")

	if err := f.social.AddFavorite(f.ctx, fan.ID, r.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.social.AddFavorite(f.ctx, fan.ID, keep.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.comments.Add(f.ctx, r.ID, fan.ID, "Paprika!", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := f.engagement.Rate(f.ctx, r.ID, fan.ID, 4, ""); err != nil {
		t.Fatal(err)
	}

	if err := f.recipes.Delete(f.ctx, r.ID, fan.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("fan delete err = %v", err)
	}
	if err := f.recipes.Delete(f.ctx, r.ID, author.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := f.recipes.Get(f.ctx, r.ID, author.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted recipe err = %v", err)
	}
	u, _ := f.store.GetUser(f.ctx, fan.ID)
	if u.HasFavorite(r.ID) || !u.HasFavorite(keep.ID) {
		t.Errorf("favorites = %v", u.FavoriteRecipes)
	}
	if n, _ := f.store.CountComments(f.ctx, r.ID); n != 0 {
		t.Errorf("comments left = %d", n)
	}
	if list := f.inbox(t, author); len(list) != 0 {
		t.Errorf("notifications left = %+v", list)
	}
	if err := f.recipes.Delete(f.ctx, r.ID, author.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestShareRecipe(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	friend := f.user(t, "friend")
	r := f.recipe(t, author, "Bao")

	if err := f.recipes.Share(f.ctx, r.ID, friend.ID, "not-an-email", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("bad address err = %v", err)
	}
	if err := f.recipes.Share(f.ctx, r.ID, friend.ID, "pal@example.com", strings.Repeat("n", 501)); !errors.Is(err, ErrValidation) {
		t.Errorf("long note err = %v", err)
	}
	if err := f.recipes.Share(f.ctx, 999, friend.ID, "pal@example.com", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing recipe err = %v", err)
	}

	if err := f.recipes.Share(f.ctx, r.ID, friend.ID, " pal@example.com ", "<i>try it</i>"); err != nil {
		t.Fatalf("Share: %v", err)
	}
	if len(f.mail.to) != 1 || f.mail.to[0] != "pal@example.com" {
		t.Fatalf("mailed to %v", f.mail.to)
	}
	got := f.mail.share[0]
	want := RecipeShare{SenderName: "friend", RecipeTitle: "Bao", Link: fmt.Sprintf("https://recipes.example.com/recipes/%d", r.ID), Note: "try it"}
	if got != want {
		t.Errorf("share = %+v, want %+v", got, want)
	}
}
