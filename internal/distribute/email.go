// Package distribute delivers an approved press release to its recipients:
// personalized emails over SMTP and posts to the configured social networks.
// Delivery is best-effort per target; the per-target outcome map lets the
// caller decide whether a partial failure matters.
package distribute

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/mediareach/press-cli/internal/model"
)

// EmailSender delivers a single email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPConfig holds the SMTP server settings.
type SMTPConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	From     string `yaml:"from" mapstructure:"from"`
}

// SMTPSender implements EmailSender over net/smtp.
type SMTPSender struct {
	cfg SMTPConfig
	// sendMail is swappable for tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates an SMTPSender for the given server.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	return &SMTPSender{cfg: cfg, sendMail: smtp.SendMail}
}

// Send delivers one email. The context bounds nothing here: net/smtp offers
// no context support, so the SMTP server's own timeouts apply.
func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	if s.cfg.Host == "" {
		return eris.New("smtp: host not configured")
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	if err := s.sendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return eris.Wrapf(err, "smtp: send to %s", to)
	}
	return nil
}

// Emails sends the press release to every recipient with a known address
// and reports the per-address outcome. Recipients without an email are
// skipped. A failed send marks that address false and moves on.
func Emails(ctx context.Context, sender EmailSender, subject, body string, recipients []model.Recipient) map[string]bool {
	log := zap.L()
	results := make(map[string]bool)

	for _, r := range recipients {
		if !r.Distributable() {
			log.Debug("skipping recipient without email", zap.String("name", r.Name))
			continue
		}

		personalized := fmt.Sprintf("Gentile %s,\n\n%s", r.Name, body)
		if err := sender.Send(ctx, r.Email, subject, personalized); err != nil {
			log.Warn("email send failed", zap.String("to", r.Email), zap.Error(err))
			results[r.Email] = false
			continue
		}
		log.Info("email sent", zap.String("to", r.Email), zap.String("publication", r.Publication))
		results[r.Email] = true
	}
	return results
}
