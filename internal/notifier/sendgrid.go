// Package notifier emails the forecast report through SendGrid: a
// fixed HTML body with the supplied message and the table attached as
// a base64-encoded CSV file.
package notifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/mkravets/weather-report/internal/config"
	"github.com/mkravets/weather-report/internal/forecast"
)

const sendEndpoint = "/v3/mail/send"

var (
	// ErrMissingCredentials reports an unset sender address or API key.
	ErrMissingCredentials = errors.New("sender address and api key must be configured")
	// ErrNotAccepted reports any delivery status other than 202.
	ErrNotAccepted = errors.New("delivery not accepted")
)

var bodyTemplate = template.Must(template.New("report").Parse(`
<html>
<head>
    <style>
        body {
            font-family: Arial, sans-serif;
            font-size: 14px;
        }
        .greeting {
            font-size: 18px;
            font-weight: bold;
        }
        .content {
            margin-top: 10px;
        }
        .signature {
            font-weight: bold;
        }
    </style>
</head>
<body>
    <p class="greeting">Hi Team,</p>
    <div class="content">
        <p>{{.Message}}</p>
    </div>
    <p>Thanks,</p>
    <p class="signature">Weather Report Service</p>
</body>
</html>
`))

type Mailer struct {
	cfg    config.EmailConfig
	logger *zap.Logger
}

func New(cfg config.EmailConfig, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// Send renders the HTML report, attaches table as CSV and delivers it
// to recipient. Only HTTP 202 from the provider counts as success.
func (m *Mailer) Send(ctx context.Context, message string, table forecast.Table, recipient string) error {
	if m.cfg.Sender == "" || m.cfg.APIKey == "" {
		return ErrMissingCredentials
	}

	var body bytes.Buffer
	if err := bodyTemplate.Execute(&body, struct{ Message string }{Message: message}); err != nil {
		return fmt.Errorf("rendering report body: %w", err)
	}

	csvData, err := table.CSV()
	if err != nil {
		return fmt.Errorf("serializing forecast attachment: %w", err)
	}

	msg := mail.NewV3Mail()
	msg.SetFrom(mail.NewEmail("", m.cfg.Sender))
	msg.Subject = m.cfg.Subject

	personalization := mail.NewPersonalization()
	personalization.AddTos(mail.NewEmail("", recipient))
	msg.AddPersonalizations(personalization)

	msg.AddContent(mail.NewContent("text/html", body.String()))

	attachment := mail.NewAttachment()
	attachment.SetContent(base64.StdEncoding.EncodeToString(csvData))
	attachment.SetType("text/csv")
	attachment.SetFilename(m.cfg.AttachmentName)
	attachment.SetDisposition("attachment")
	msg.AddAttachment(attachment)

	request := sendgrid.GetRequest(m.cfg.APIKey, sendEndpoint, m.cfg.Host)
	request.Method = http.MethodPost
	client := &sendgrid.Client{Request: request}

	resp, err := client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sending report email: %w", err)
	}
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("%w: status %d", ErrNotAccepted, resp.StatusCode)
	}

	m.logger.Debug("report email accepted by provider",
		zap.String("recipient", recipient),
		zap.Int("attachment_bytes", len(csvData)))

	return nil
}
