package email

import (
	"fmt"
	"net/smtp"

	"github.com/fintrackhq/fintrack/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendImportNotification tells a user how their statement import ended
func (s *Sender) SendImportNotification(to, username, sourceName string, imported int, jobErr error) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}

	body := fmt.Sprintf("Dear %s,\n\n", username)
	if jobErr != nil {
		e.Subject = "Transaction Import Failed"
		body += fmt.Sprintf(
			"Your import of %q could not be completed: %v.\n"+
				"Rows written before the failure remain in your account; "+
				"please review before resubmitting the file.\n",
			sourceName, jobErr,
		)
	} else {
		e.Subject = "Transaction Import Complete"
		body += fmt.Sprintf(
			"Your import of %q has finished. %d transactions were added to your account.\n",
			sourceName, imported,
		)
	}
	body += "\nBest regards,\nFintrack"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
