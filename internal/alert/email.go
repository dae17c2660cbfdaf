package alert

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/finwell-io/wellness-service/internal/config"
	"github.com/finwell-io/wellness-service/internal/models"
)

// EmailNotifier delivers alerts over SMTP.
type EmailNotifier struct {
	cfg        *config.Config
	recipients []string
	logger     *logrus.Logger
}

// NewEmailNotifier creates an SMTP-backed alert channel.
func NewEmailNotifier(cfg *config.Config, recipients []string, logger *logrus.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:        cfg,
		recipients: recipients,
		logger:     logger,
	}
}

func (s *EmailNotifier) Send(_ context.Context, a models.Alert) error {
	if len(s.recipients) == 0 {
		return fmt.Errorf("no email recipients configured")
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = s.recipients
	e.Subject = fmt.Sprintf("[%s] %s", a.Severity, a.Title)

	body := fmt.Sprintf(
		"%s\n\nSource: %s\nAlert ID: %s\nRaised at: %s\n",
		a.Message, a.Source, a.ID, a.CreatedAt.Format("2006-01-02 15:04:05"),
	)
	for k, v := range a.Metadata {
		body += fmt.Sprintf("%s: %s\n", k, v)
	}
	body += "\nFinancial Wellness Service"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send alert email: %v", err)
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	s.logger.Infof("Alert email sent: %s", e.Subject)
	return nil
}
