package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/ward-api/internal/config"
)

type Service interface {
	SendWelcome(ctx context.Context, to string, name string, tempPassword string) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendWelcome(_ context.Context, to, name, tempPassword string) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour maternity ward staff account has been created.\n"+
			"Temporary password: %s\n\nPlease change it after your first login.",
		name, tempPassword,
	)
	return s.send(to, "Your ward account", body)
}

func (s *smtpService) SendCustom(_ context.Context, to, subject, content string) error {
	return s.send(to, subject, content)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
