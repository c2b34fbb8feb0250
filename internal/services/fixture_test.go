package services

import (
	"context"
	"testing"
	"time"

	"recipehub/internal/models"
	"recipehub/internal/store/memory"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeMailer struct {
	to    []string
	share []RecipeShare
}

func (m *fakeMailer) SendRecipeShare(to string, share RecipeShare) {
	m.to = append(m.to, to)
	m.share = append(m.share, share)
}

type fixture struct {
	ctx   context.Context
	store *memory.Store
	clock *testClock
	mail  *fakeMailer

	notifications *NotificationService
	engagement    *EngagementService
	social        *SocialService
	comments      *CommentService
	discovery     *DiscoveryService
	recipes       *RecipeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := &testClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	st := memory.New().WithClock(clk.now)

	f := &fixture{ctx: context.Background(), store: st, clock: clk, mail: &fakeMailer{}}

	f.notifications = NewNotificationService(st, models.NotificationRetention)
	f.notifications.now = clk.now
	f.engagement = NewEngagementService(st, f.notifications)
	f.engagement.now = clk.now
	f.social = NewSocialService(st, f.notifications)
	f.comments = NewCommentService(st, f.notifications)
	f.comments.now = clk.now

	var err error
	f.discovery, err = NewDiscoveryService(st, time.Minute)
	if err != nil {
		t.Fatalf("NewDiscoveryService: %v", err)
	}
	f.recipes = NewRecipeService(st, f.engagement, f.discovery, f.mail, "https://recipes.example.com/")
	return f
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", DisplayName: name}
	if err := f.store.CreateUser(f.ctx, u); err != nil {
		t.Fatalf("CreateUser(%s): %v", name, err)
	}
	return u
}

func (f *fixture) recipe(t *testing.T, author *models.User, title string) *RecipeView {
	t.Helper()
	v, err := f.recipes.Create(f.ctx, author.ID, RecipeInput{
		Title:       title,
		Ingredients: []models.Ingredient{{Name: "Salt"}},
	})
	if err != nil {
		t.Fatalf("Create(%s): %v", title, err)
	}
	f.clock.advance(time.Second)
	return v
}

func (f *fixture) inbox(t *testing.T, u *models.User) []models.Notification {
	t.Helper()
	list, _, err := f.notifications.List(f.ctx, u.ID, Page{Limit: MaxPageLimit}, false)
	if err != nil {
		t.Fatalf("List notifications: %v", err)
	}
	return list
}

func countType(list []models.Notification, typ models.NotificationType) int {
	n := 0
	for _, x := range list {
		if x.Type == typ {
			n++
		}
	}
	return n
}
