package notification

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Sender delivers a piece of content to a patient. The SMTP implementation is
// the only one in production; tests substitute their own.
type Sender interface {
	Send(to, subject, body string) error
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	logger zerolog.Logger
}

func NewSMTPSender(cfg SMTPConfig, logger zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	s.logger.Debug().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}
