// Package smtp delivers email out-of-band, most importantly the 2FA codes.
package smtp

import (
	"fmt"
	"net/smtp"

	"github.com/go-auth-service/internal/domain"
)

// MailerConfig carries the SMTP connection settings.
type MailerConfig struct {
	Host     string
	Port     string
	From     string
	Username string
	Password string
}

// Mailer sends mail through a plain SMTP relay. It implements
// domain.EmailClient.
type Mailer struct {
	cfg MailerConfig
}

func NewMailer(cfg MailerConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Send(recipient domain.Email, subject, body string) error {
	to := recipient.Address()
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.cfg.From, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg))
}
