package services

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"sync"
	"time"

	"recipehub/internal/config"
	"recipehub/internal/metrics"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
	"gopkg.in/gomail.v2"
)

var shareTemplate = template.Must(template.New("share").Parse(`<p>{{.SenderName}} thinks you will like this recipe:</p>
<p><a href="{{.Link}}">{{.RecipeTitle}}</a></p>
{{if .Note}}<blockquote>{{.Note}}</blockquote>{{end}}
<p style="color:#888">Sent from RecipeHub</p>`))

// MailService sends transactional mail in the background. Delivery goes
// through a circuit breaker so a dead SMTP server does not pile up
// goroutines blocked on dial timeouts.
type MailService struct {
	From    string
	Enabled bool

	send    func(*gomail.Message) error
	breaker *gobreaker.CircuitBreaker[struct{}]
	wg      sync.WaitGroup
}

func NewMailService(cfg config.MailConfig) *MailService {
	s := &MailService{From: cfg.From, Enabled: cfg.Enabled()}
	if !s.Enabled {
		log.Warn().Msg("MailService disabled: missing SMTP settings")
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	s.send = func(m *gomail.Message) error { return dialer.DialAndSend(m) }
	s.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state change")
		},
	})
	return s
}

func (s *MailService) deliver(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.send(m)
	})
	return err
}

func (s *MailService) sendAsync(to, subject, body string) {
	if !s.Enabled {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.deliver(to, subject, body); err != nil {
			result := "failure"
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				result = "rejected"
			}
			metrics.MailSent.WithLabelValues(result).Inc()
			log.Warn().Err(err).Str("to", to).Msg("Failed to send email")
			return
		}
		metrics.MailSent.WithLabelValues("success").Inc()
		log.Info().Str("to", to).Str("subject", subject).Msg("Email sent")
	}()
}

// Wait blocks until every queued email has been attempted.
func (s *MailService) Wait() {
	s.wg.Wait()
}

func (s *MailService) SendRecipeShare(to string, share RecipeShare) {
	var buf bytes.Buffer
	if err := shareTemplate.Execute(&buf, share); err != nil {
		log.Error().Err(err).Msg("Error rendering share email")
		return
	}
	s.sendAsync(to, fmt.Sprintf("%s shared a recipe with you: %s", share.SenderName, share.RecipeTitle), buf.String())
}
