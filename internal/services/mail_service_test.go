package services

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"recipehub/internal/config"

	"github.com/sony/gobreaker/v2"
	"gopkg.in/gomail.v2"
)

func testMailConfig() config.MailConfig {
	return config.MailConfig{Host: "smtp.example.com", Port: 587, User: "bot", Pass: "secret", From: "bot@example.com"}
}

func TestSendRecipeShare(t *testing.T) {
	s := NewMailService(testMailConfig())

	var mu sync.Mutex
	var sent []*gomail.Message
	s.send = func(m *gomail.Message) error {
		mu.Lock()
		defer mu.Unlock()
		sent = append(sent, m)
		return nil
	}

	s.SendRecipeShare("pal@example.com", RecipeShare{
		SenderName:  "Ana",
		RecipeTitle: "Tortilla",
		Link:        "https://recipes.example.com/recipes/3",
		Note:        "<script>x</script>",
	})
	s.Wait()

	if len(sent) != 1 {
		t.Fatalf("sent %d messages", len(sent))
	}
	m := sent[0]
	if got := m.GetHeader("To"); len(got) != 1 || got[0] != "pal@example.com" {
		t.Errorf("To = %v", got)
	}
	if got := m.GetHeader("Subject"); len(got) != 1 || got[0] != "Ana shared a recipe with you: Tortilla" {
		t.Errorf("Subject = %v", got)
	}
	var body strings.Builder
	if _, err := m.WriteTo(&body); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(body.String(), "<script>") {
		t.Error("note was not escaped")
	}
}

func TestMailDisabled(t *testing.T) {
	s := NewMailService(config.MailConfig{})
	called := false
	s.send = func(*gomail.Message) error {
		called = true
		return nil
	}
	s.SendRecipeShare("pal@example.com", RecipeShare{SenderName: "Ana", RecipeTitle: "Tortilla"})
	s.Wait()
	if s.Enabled || called {
		t.Errorf("disabled mailer sent mail (enabled=%v)", s.Enabled)
	}
}

func TestMailBreakerOpens(t *testing.T) {
	s := NewMailService(testMailConfig())
	calls := 0
	s.send = func(*gomail.Message) error {
		calls++
		return errors.New("connection refused")
	}

	for i := 0; i < 3; i++ {
		if err := s.deliver("pal@example.com", "hi", "body"); err == nil {
			t.Fatal("expected delivery failure")
		}
	}
	err := s.deliver("pal@example.com", "hi", "body")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("fourth delivery err = %v, want open breaker", err)
	}
	if calls != 3 {
		t.Errorf("smtp called %d times, want 3", calls)
	}
}
