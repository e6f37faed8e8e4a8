package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/leavehub/leavehub-backend-go/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// InvitationData carries everything the invitation template renders. The
// token only appears embedded in the link; the code is shown for manual
// entry.
type InvitationData struct {
	To               string
	FullName         string
	OrganizationName string
	PersonalMessage  *string
	Link             string
	Code             string
	ExpiresAt        string
}

// EmailService defines the interface for sending emails
type EmailService interface {
	SendInvitation(data InvitationData) error
}

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
	}, nil
}

type invitationEmailData struct {
	FullName         string
	OrganizationName string
	PersonalMessage  string
	Link             string
	Code             string
	ExpiresAt        string
}

// SendInvitation sends an invitation email to the invited person
func (s *emailServiceImpl) SendInvitation(data InvitationData) error {
	tmplData := invitationEmailData{
		FullName:         data.FullName,
		OrganizationName: data.OrganizationName,
		Link:             data.Link,
		Code:             data.Code,
		ExpiresAt:        data.ExpiresAt,
	}
	if data.PersonalMessage != nil {
		tmplData.PersonalMessage = *data.PersonalMessage
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "invitation.html", tmplData); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	subject := fmt.Sprintf("You have been invited to join %s", data.OrganizationName)
	return s.sendHTML(data.To, subject, body.String())
}

func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, from)
	headers += fmt.Sprintf("To: %s\r\n", to)
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := smtp.SendMail(addr, auth, from, []string{to}, message)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}
		lastErr = err
		slog.Warn("Email send failed, retrying", "to", to, "attempt", attempt, "error", err)
		time.Sleep(time.Duration(attempt) * time.Second)
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
