package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"recipehub/internal/models"
	"recipehub/internal/store"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore() (*Store, *fakeClock) {
	clk := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	return New().WithClock(clk.now), clk
}

func TestUserSets(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	u := &models.User{Username: "alice", Email: "a@example.com"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	changed, err := s.AddFollowing(ctx, u.ID, 42)
	if err != nil || !changed {
		t.Fatalf("first add: changed=%v err=%v", changed, err)
	}
	changed, _ = s.AddFollowing(ctx, u.ID, 42)
	if changed {
		t.Error("second add should be a no-op")
	}
	changed, _ = s.RemoveFollowing(ctx, u.ID, 42)
	if !changed {
		t.Error("remove should report a change")
	}
	changed, _ = s.RemoveFollowing(ctx, u.ID, 42)
	if changed {
		t.Error("second remove should be a no-op")
	}

	if _, err := s.AddFavorite(ctx, 999, 1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing user: got %v, want ErrNotFound", err)
	}

	if err := s.CreateUser(ctx, &models.User{Username: "alice", Email: "other@example.com"}); err == nil {
		t.Error("duplicate username should fail")
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	u := &models.User{Username: "bob", Email: "b@example.com"}
	_ = s.CreateUser(ctx, u)
	got, _ := s.GetUser(ctx, u.ID)
	got.Following = append(got.Following, 7)

	again, _ := s.GetUser(ctx, u.ID)
	if len(again.Following) != 0 {
		t.Errorf("mutating a returned user leaked into the store: %v", again.Following)
	}
}

func TestRatingUpsert(t *testing.T) {
	ctx := context.Background()
	s, clk := newTestStore()

	r := &models.Recipe{AuthorID: 1, Title: "Soup", IsPublished: true, IsPublic: true}
	_ = s.CreateRecipe(ctx, r)

	_ = s.UpsertRating(ctx, &models.Rating{RecipeID: r.ID, UserID: 2, Value: 5, RatedAt: clk.now()})
	clk.advance(time.Minute)
	_ = s.UpsertRating(ctx, &models.Rating{RecipeID: r.ID, UserID: 3, Value: 1, RatedAt: clk.now()})
	clk.advance(time.Minute)
	_ = s.UpsertRating(ctx, &models.Rating{RecipeID: r.ID, UserID: 2, Value: 3, RatedAt: clk.now()})

	got, err := s.GetRecipe(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetRecipe: %v", err)
	}
	if got.RatingsCount() != 2 {
		t.Fatalf("ratings = %d, want 2", got.RatingsCount())
	}
	if avg := got.AverageRating(); avg != 2 {
		t.Errorf("average = %v, want 2", avg)
	}

	if err := s.UpsertRating(ctx, &models.Rating{RecipeID: 999, UserID: 2, Value: 3}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("rating a missing recipe: got %v", err)
	}
}

func TestToggleRecipeLike(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	r := &models.Recipe{AuthorID: 1, Title: "Bread"}
	_ = s.CreateRecipe(ctx, r)

	tg, _ := s.ToggleRecipeLike(ctx, r.ID, 5)
	if !tg.Liked || tg.Count != 1 {
		t.Errorf("first toggle = %+v", tg)
	}
	tg, _ = s.ToggleRecipeLike(ctx, r.ID, 5)
	if tg.Liked || tg.Count != 0 {
		t.Errorf("second toggle = %+v", tg)
	}
	if _, err := s.ToggleRecipeLike(ctx, 999, 5); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing recipe: got %v", err)
	}
}

func TestSaveRecipeKeepsCounters(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	r := &models.Recipe{AuthorID: 1, Title: "Stew"}
	_ = s.CreateRecipe(ctx, r)
	_, _ = s.ToggleRecipeLike(ctx, r.ID, 9)
	_ = s.IncrementViews(ctx, r.ID)

	stale := *r
	stale.Title = "Beef stew"
	if err := s.SaveRecipe(ctx, &stale); err != nil {
		t.Fatalf("SaveRecipe: %v", err)
	}

	got, _ := s.GetRecipe(ctx, r.ID)
	if got.Title != "Beef stew" || got.LikesCount() != 1 || got.Views != 1 {
		t.Errorf("got title=%q likes=%d views=%d", got.Title, got.LikesCount(), got.Views)
	}
}

func TestSearchRecipes(t *testing.T) {
	ctx := context.Background()
	s, clk := newTestStore()

	mk := func(title string, prep, cook int, cuisine string, tags ...string) *models.Recipe {
		r := &models.Recipe{
			AuthorID:    1,
			Title:       title,
			Cuisine:     cuisine,
			PrepTime:    prep,
			CookTime:    cook,
			Tags:        tags,
			Difficulty:  models.DifficultyEasy,
			IsPublished: true,
			IsPublic:    true,
			Ingredients: []models.Ingredient{{Name: "Olive oil"}, {Name: title + " base"}},
		}
		_ = s.CreateRecipe(ctx, r)
		clk.advance(time.Minute)
		return r
	}
	pasta := mk("Pasta", 10, 15, "Italian", "quick")
	curry := mk("Curry", 20, 40, "Indian")
	salad := mk("Salad", 10, 0, "italian", "quick", "fresh")
	hidden := mk("Secret pasta", 5, 5, "Italian")
	hidden.IsPublic = false
	_ = s.SaveRecipe(ctx, hidden)

	tests := []struct {
		name  string
		q     store.RecipeQuery
		want  []uint
		total int64
	}{
		{"newest", store.RecipeQuery{Sort: store.SortNewest, Desc: true}, []uint{salad.ID, curry.ID, pasta.ID}, 3},
		{"cuisine case-insensitive", store.RecipeQuery{Filter: store.RecipeFilter{Cuisine: "ITALIAN"}, Sort: store.SortOldest}, []uint{pasta.ID, salad.ID}, 2},
		{"keyword in tags", store.RecipeQuery{Filter: store.RecipeFilter{Keyword: "QUICK"}, Sort: store.SortTitle}, []uint{pasta.ID, salad.ID}, 2},
		{"ingredient", store.RecipeQuery{Filter: store.RecipeFilter{Ingredients: []string{"curry"}}}, []uint{curry.ID}, 1},
		{"max total time", store.RecipeQuery{Filter: store.RecipeFilter{MaxTotalTime: 25}, Sort: store.SortPrepTime}, []uint{pasta.ID, salad.ID}, 2},
		{"prep time tie broken by id", store.RecipeQuery{Sort: store.SortPrepTime, Desc: true}, []uint{curry.ID, salad.ID, pasta.ID}, 3},
		{"window", store.RecipeQuery{Sort: store.SortNewest, Desc: true, Offset: 1, Limit: 1}, []uint{curry.ID}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := s.SearchRecipes(ctx, tt.q)
			if err != nil {
				t.Fatalf("SearchRecipes: %v", err)
			}
			if total != tt.total {
				t.Errorf("total = %d, want %d", total, tt.total)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d recipes, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].ID != tt.want[i] {
					t.Errorf("position %d: got id %d, want %d", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestCategoriesVisibleOnly(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	_ = s.CreateRecipe(ctx, &models.Recipe{AuthorID: 1, Title: "a", Cuisine: "Thai", MealTypes: []string{"dinner"}, Difficulty: models.DifficultyHard, IsPublished: true, IsPublic: true})
	_ = s.CreateRecipe(ctx, &models.Recipe{AuthorID: 1, Title: "b", Cuisine: "French", MealTypes: []string{"brunch"}, Difficulty: models.DifficultyEasy, IsPublished: false, IsPublic: true})

	cats, err := s.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats.Cuisines) != 1 || cats.Cuisines[0] != "Thai" {
		t.Errorf("cuisines = %v", cats.Cuisines)
	}
	if len(cats.MealTypes) != 1 || cats.MealTypes[0] != "dinner" {
		t.Errorf("meal types = %v", cats.MealTypes)
	}
	if len(cats.Difficulties) != 1 || cats.Difficulties[0] != models.DifficultyHard {
		t.Errorf("difficulties = %v", cats.Difficulties)
	}
}

func TestDeleteCommentCascadesReplies(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	root := &models.Comment{RecipeID: 1, AuthorID: 1, Content: "root"}
	_ = s.CreateComment(ctx, root)
	for i := 0; i < 2; i++ {
		reply := &models.Comment{RecipeID: 1, AuthorID: 2, Content: "reply"}
		p, _ := models.ReplyTo(root)
		p.Apply(reply)
		_ = s.CreateComment(ctx, reply)
	}
	other := &models.Comment{RecipeID: 1, AuthorID: 3, Content: "other"}
	_ = s.CreateComment(ctx, other)

	removed, err := s.DeleteComment(ctx, root.ID)
	if err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	if len(removed) != 3 || removed[0] != root.ID {
		t.Errorf("removed = %v", removed)
	}
	if n, _ := s.CountComments(ctx, 1); n != 1 {
		t.Errorf("remaining comments = %d, want 1", n)
	}
	if _, err := s.DeleteComment(ctx, root.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: got %v", err)
	}
}

func TestNotificationsRespectCutoff(t *testing.T) {
	ctx := context.Background()
	s, clk := newTestStore()

	old := &models.Notification{RecipientID: 1, SenderID: 2, Type: models.NotificationTypeFollow, Message: "old"}
	_ = s.CreateNotification(ctx, old)
	clk.advance(time.Hour)
	fresh := &models.Notification{RecipientID: 1, SenderID: 2, Type: models.NotificationTypeLike, Message: "fresh"}
	_ = s.CreateNotification(ctx, fresh)

	since := old.CreatedAt
	list, total, _ := s.ListNotifications(ctx, 1, since, false, 0, 10)
	if total != 1 || len(list) != 1 || list[0].ID != fresh.ID {
		t.Errorf("list = %+v total=%d", list, total)
	}
	if _, err := s.GetNotification(ctx, old.ID, since); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expired notification should be hidden, got %v", err)
	}
	if n, _ := s.CountUnread(ctx, 1, since); n != 1 {
		t.Errorf("unread = %d, want 1", n)
	}
	if n, _ := s.MarkAllRead(ctx, 1, since, clk.now()); n != 1 {
		t.Errorf("marked = %d, want 1", n)
	}

	purged, _ := s.Purge(ctx, since)
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
}
