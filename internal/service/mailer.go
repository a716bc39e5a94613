package service

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
)

// Mail templates selected by moderation outcome.
const (
	MailTemplateApproved = "submission-approved"
	MailTemplateRejected = "submission-rejected"
)

// MailMessage is one outbound notification.
type MailMessage struct {
	To       string
	Subject  string
	Template string
	Context  map[string]string
}

// Mailer delivers moderation notifications. Failures are logged by callers,
// not retried; any retry policy belongs to the transport.
type Mailer interface {
	Send(ctx context.Context, message MailMessage) error
}

// SMTPConfig carries mail transport settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type smtpMailer struct {
	cfg    SMTPConfig
	logger zerolog.Logger
}

// NewSMTPMailer constructs a Mailer that delivers over plain SMTP.
func NewSMTPMailer(cfg SMTPConfig, logger zerolog.Logger) Mailer {
	return &smtpMailer{
		cfg:    cfg,
		logger: logger.With().Str("component", "smtp_mailer").Logger(),
	}
}

func (m *smtpMailer) Send(ctx context.Context, message MailMessage) error {
	body, err := renderTemplate(message.Template, message.Context)
	if err != nil {
		return err
	}

	headers := strings.Join([]string{
		fmt.Sprintf("From: %s", m.cfg.From),
		fmt.Sprintf("To: %s", message.To),
		fmt.Sprintf("Subject: %s", message.Subject),
		"MIME-version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
	}, "\r\n")

	payload := []byte(headers + "\r\n\r\n" + body)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	address := m.cfg.Host + ":" + m.cfg.Port

	if err := smtp.SendMail(address, auth, m.cfg.From, []string{message.To}, payload); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	m.logger.Info().Str("to", message.To).Str("template", message.Template).Msg("mail sent")

	return nil
}

const approvedBody = `<!DOCTYPE html>
<html>
<body style="background-color: #f9fafb; margin: 0; padding: 0; font-family: Arial, sans-serif;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <tr>
      <td style="background: #ffffff; padding: 40px 20px; border-radius: 12px;">
        <h1 style="font-size: 22px;">Your submission was approved</h1>
        <p>Hi %s,</p>
        <p>Your entry <strong>%s</strong> for the competition <strong>%s</strong> has been approved by our staff.</p>
        <p>Submission #%s, submitted on %s. The competition runs %s.</p>
        <p>Good luck!</p>
      </td>
    </tr>
  </table>
</body>
</html>`

const rejectedBody = `<!DOCTYPE html>
<html>
<body style="background-color: #f9fafb; margin: 0; padding: 0; font-family: Arial, sans-serif;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <tr>
      <td style="background: #ffffff; padding: 40px 20px; border-radius: 12px;">
        <h1 style="font-size: 22px;">Your submission was not accepted</h1>
        <p>Hi %s,</p>
        <p>Unfortunately your entry <strong>%s</strong> for the competition <strong>%s</strong> was not accepted.</p>
        <p>Submission #%s, submitted on %s. The competition runs %s.</p>
        <p>You are welcome to improve your work and join a future competition.</p>
      </td>
    </tr>
  </table>
</body>
</html>`

func renderTemplate(template string, context map[string]string) (string, error) {
	var body string
	switch template {
	case MailTemplateApproved:
		body = approvedBody
	case MailTemplateRejected:
		body = rejectedBody
	default:
		return "", fmt.Errorf("unknown mail template %q", template)
	}

	return fmt.Sprintf(body,
		context["student_name"],
		context["submission_title"],
		context["competition_title"],
		context["submission_id"],
		context["submission_date"],
		context["competition_range"],
	), nil
}
