package smtp

import (
	"log/slog"

	"github.com/go-auth-service/internal/domain"
)

// LogMailer logs messages instead of sending them. It backs the development
// configuration, where no SMTP relay is available. The body is logged at
// debug level only, since it carries the 2FA code.
type LogMailer struct {
	log *slog.Logger
}

func NewLogMailer(log *slog.Logger) *LogMailer {
	if log == nil {
		log = slog.Default()
	}
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(recipient domain.Email, subject, body string) error {
	m.log.Info("sending email", "recipient", recipient.Address(), "subject", subject)
	m.log.Debug("email body", "body", body)
	return nil
}
