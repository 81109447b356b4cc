package services

import (
	"fmt"

	"github.com/crstnalianza/rabas-backend/internal/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// MailerService sends transactional mail over SMTP.
type MailerService struct {
	cfg       config.SMTPConfig
	publicURL string
	logger    *logrus.Logger
}

// NewMailerService creates a new MailerService
func NewMailerService(cfg config.SMTPConfig, publicURL string, logger *logrus.Logger) *MailerService {
	return &MailerService{cfg: cfg, publicURL: publicURL, logger: logger}
}

// SendPasswordReset mails a reset link carrying the given token.
func (s *MailerService) SendPasswordReset(email, token string) error {
	resetLink := fmt.Sprintf("%s/reset-password/%s", s.publicURL, token)

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Reset your password")
	m.SetBody("text/html", fmt.Sprintf(`
		<p>We received a request to reset the password for your account.</p>
		<p><a href="%s">Click here to choose a new password.</a></p>
		<p>The link expires in one hour. If you did not request this, you can ignore this email.</p>
	`, resetLink))

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	s.logger.WithField("email", email).Info("Password reset email sent")
	return nil
}
