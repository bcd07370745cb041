// Package mailer sends transactional email over SMTP.
package mailer

import (
	"fmt"

	"homestead/internal/config"

	"gopkg.in/gomail.v2"
)

// Mailer sends templated mail through a configured SMTP relay.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// New builds a Mailer from the SMTP settings in cfg.
func New(cfg *config.Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

// SendWelcome delivers the registration welcome message. Callers treat
// failures as best-effort; registration never rolls back on mail errors.
func (m *Mailer) SendWelcome(name, email string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Welcome to Homestead")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nThank you for registering at Homestead. Happy house hunting!\n\nThe Homestead Team", name))

	return m.dialer.DialAndSend(msg)
}
