package mail

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"jusfiscal/config"
)

// Sender delivers outreach emails. Without a configured SMTP host it
// logs the message and reports success, so the outreach flow stays
// usable in development.
type Sender struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewSender creates an email sender.
func NewSender(cfg *config.Config, logger *zap.Logger) *Sender {
	return &Sender{Config: cfg, Logger: logger}
}

// Simulated reports whether sends are simulated instead of delivered via SMTP.
func (s *Sender) Simulated() bool {
	return s.Config.SMTPHost == ""
}

// Send delivers one plain-text email and returns a delivery id.
func (s *Sender) Send(to, subject, body string) (string, error) {
	if s.Simulated() {
		s.Logger.Info("Simulated email send",
			zap.String("to", to),
			zap.String("subject", subject))
		return fmt.Sprintf("email_sim_%d", time.Now().UnixNano()), nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.Config.SMTPFrom)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.Config.SMTPHost, s.Config.SMTPPort, s.Config.SMTPUser, s.Config.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		return "", fmt.Errorf("smtp send failed: %w", err)
	}

	s.Logger.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return fmt.Sprintf("email_%d", time.Now().UnixNano()), nil
}
