// Package email provides the ops alert mailer for integrity faults.
package email

import (
	"fmt"
	"os"

	"github.com/brightframe/rotator-go/internal/infrastructure/observability/logging"
	"github.com/resendlabs/resend-go"
)

// AlertService defines the interface for sending operational alerts,
// allowing for mock implementations in tests. Alerts are best-effort:
// callers never fail a request because an alert could not be sent.
type AlertService interface {
	SendIntegrityAlert(subject, detail string) error
}

// ResendClient is the concrete implementation of AlertService using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	toEmail   string
}

// LogOnlyAlerter satisfies AlertService without an email provider; used
// when RESEND_API_KEY is not configured and in tests.
type LogOnlyAlerter struct {
	logger *logging.ChanneledLogger
}

// NewService creates an alert service. Without RESEND_API_KEY it degrades
// to log-only alerting rather than failing startup.
func NewService(logger *logging.ChanneledLogger) AlertService {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		logger.Startup().Info("RESEND_API_KEY not set - integrity alerts will be log-only")
		return &LogOnlyAlerter{logger: logger}
	}

	fromEmail := os.Getenv("ALERT_EMAIL_FROM")
	if fromEmail == "" {
		fromEmail = "alerts@brightframe.dev"
	}

	toEmail := os.Getenv("ALERT_EMAIL_TO")
	if toEmail == "" {
		toEmail = "ops@brightframe.dev"
	}

	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		toEmail:   toEmail,
	}
}

// SendIntegrityAlert composes and sends an integrity fault alert email.
func (c *ResendClient) SendIntegrityAlert(subject, detail string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Rotator Alerts <%s>", c.fromEmail),
		To:      []string{c.toEmail},
		Subject: "[rotator] " + subject,
		Text:    detail,
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send integrity alert via Resend: %w", err)
	}

	return nil
}

// SendIntegrityAlert logs the alert on the alert channel.
func (a *LogOnlyAlerter) SendIntegrityAlert(subject, detail string) error {
	a.logger.Alert().Error("Integrity alert", "subject", subject, "detail", detail)
	return nil
}
