package services

import (
	"errors"
	"testing"

	"recipehub/internal/models"
)

func TestFollowScenario(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")

	if err := f.social.Follow(f.ctx, a.ID, b.ID); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	ua, _ := f.store.GetUser(f.ctx, a.ID)
	ub, _ := f.store.GetUser(f.ctx, b.ID)
	if !ua.IsFollowing(b.ID) || !ub.HasFollower(a.ID) {
		t.Fatalf("sets not mirrored: a.following=%v b.followers=%v", ua.Following, ub.Followers)
	}

	if err := f.social.Follow(f.ctx, a.ID, b.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("second follow err = %v, want ErrConflict", err)
	}

	inbox := f.inbox(t, b)
	if n := countType(inbox, models.NotificationTypeFollow); n != 1 {
		t.Fatalf("follow notifications = %d, want 1", n)
	}
	if inbox[0].SenderID != a.ID || inbox[0].Message != "a started following you" {
		t.Errorf("notification = %+v", inbox[0])
	}
}

func TestFollowUnfollowRestores(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")

	if err := f.social.Follow(f.ctx, a.ID, b.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.social.Unfollow(f.ctx, a.ID, b.ID); err != nil {
		t.Fatal(err)
	}
	ua, _ := f.store.GetUser(f.ctx, a.ID)
	ub, _ := f.store.GetUser(f.ctx, b.ID)
	if len(ua.Following) != 0 || len(ub.Followers) != 0 {
		t.Errorf("sets not restored: %v %v", ua.Following, ub.Followers)
	}
	if err := f.social.Unfollow(f.ctx, a.ID, b.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("unfollow when not following err = %v", err)
	}
}

func TestFollowValidation(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a")

	if err := f.social.Follow(f.ctx, a.ID, a.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("self follow err = %v", err)
	}
	if err := f.social.Follow(f.ctx, a.ID, 777); !errors.Is(err, ErrNotFound) {
		t.Errorf("follow missing user err = %v", err)
	}
}

func TestFollowRepairsHalfAppliedState(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")

	// Simulate a crash between the two writes.
	if _, err := f.store.AddFollowing(f.ctx, a.ID, b.ID); err != nil {
		t.Fatal(err)
	}

	if err := f.social.Follow(f.ctx, a.ID, b.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("retry err = %v, want ErrConflict", err)
	}
	ub, _ := f.store.GetUser(f.ctx, b.ID)
	if !ub.HasFollower(a.ID) {
		t.Error("retry did not repair the follower side")
	}
}

func TestFavorites(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	fan := f.user(t, "fan")
	first := f.recipe(t, author, "First")
	second := f.recipe(t, author, "Second")

	if err := f.social.AddFavorite(f.ctx, author.ID, first.ID); err != nil {
		t.Errorf("own recipe favorite: %v", err)
	}
	if err := f.social.AddFavorite(f.ctx, fan.ID, first.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.social.AddFavorite(f.ctx, fan.ID, second.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.social.AddFavorite(f.ctx, fan.ID, second.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate favorite err = %v", err)
	}
	if err := f.social.AddFavorite(f.ctx, fan.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing recipe err = %v", err)
	}

	list, page, err := f.social.Favorites(f.ctx, fan.ID, Page{})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 2 || len(list) != 2 || list[0].ID != second.ID {
		t.Errorf("favorites = %v (total %d)", list, page.Total)
	}

	if err := f.social.RemoveFavorite(f.ctx, fan.ID, first.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.social.RemoveFavorite(f.ctx, fan.ID, first.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("remove absent favorite err = %v", err)
	}
}

func TestFollowersPageAndProfile(t *testing.T) {
	f := newFixture(t)
	star := f.user(t, "star")
	var fans []*models.User
	for _, name := range []string{"f1", "f2", "f3"} {
		u := f.user(t, name)
		fans = append(fans, u)
		if err := f.social.Follow(f.ctx, u.ID, star.ID); err != nil {
			t.Fatal(err)
		}
	}

	list, page, err := f.social.Followers(f.ctx, star.ID, Page{Page: 1, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 3 || page.TotalPages != 2 || !page.HasNextPage {
		t.Errorf("pagination = %+v", page)
	}
	if len(list) != 2 || list[0].ID != fans[2].ID {
		t.Errorf("followers page = %+v", list)
	}

	following, _, _ := f.social.Following(f.ctx, fans[0].ID, Page{})
	if len(following) != 1 || following[0].ID != star.ID {
		t.Errorf("following = %+v", following)
	}

	f.recipe(t, star, "Signature dish")
	p, err := f.social.Profile(f.ctx, star.ID, fans[1].ID)
	if err != nil {
		t.Fatal(err)
	}
	if p.FollowersCount != 3 || p.RecipesCount != 1 || !p.IsFollowing || p.IsSelf {
		t.Errorf("profile = %+v", p)
	}
}
