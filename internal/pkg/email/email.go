package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/wellpass/wellpass-backend/internal/config"
	"github.com/wellpass/wellpass-backend/internal/pkg/ids"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	maxAttempts   = 3
	retryBaseWait = time.Second
)

// EmailService sends transactional emails.
type EmailService interface {
	SendInvitation(ctx context.Context, to, employeeName, companyName, activationLink string) error
	SendPasswordReset(ctx context.Context, to, name, resetLink, expiresAt string) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      sendFunc
	now       func() time.Time
}

func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		send:      smtp.SendMail,
		now:       time.Now,
	}, nil
}

// mail is one rendered HTML message.
type mail struct {
	to      string
	subject string
	body    string
}

func (s *emailServiceImpl) render(name string, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return body.String(), nil
}

func (s *emailServiceImpl) SendInvitation(ctx context.Context, to, employeeName, companyName, activationLink string) error {
	body, err := s.render("invitation.html", struct {
		EmployeeName   string
		CompanyName    string
		ActivationLink string
	}{employeeName, companyName, activationLink})
	if err != nil {
		return err
	}
	return s.deliver(ctx, mail{to: to, subject: companyName + " invited you to Wellpass", body: body})
}

func (s *emailServiceImpl) SendPasswordReset(ctx context.Context, to, name, resetLink, expiresAt string) error {
	body, err := s.render("password_reset.html", struct {
		Name      string
		ResetLink string
		ExpiresAt string
	}{name, resetLink, expiresAt})
	if err != nil {
		return err
	}
	return s.deliver(ctx, mail{to: to, subject: "Reset your Wellpass password", body: body})
}

// encode writes m as a MIME message with CRLF line endings.
func (s *emailServiceImpl) encode(m mail) []byte {
	var b strings.Builder
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }

	header("From", fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From))
	header("To", m.to)
	header("Subject", m.subject)
	header("Date", s.now().Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@wellpass>", ids.NewULID()))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/html; charset="UTF-8"`)
	b.WriteString("\r\n")
	b.WriteString(m.body)
	return []byte(b.String())
}

func (s *emailServiceImpl) deliver(ctx context.Context, m mail) error {
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", m.to, "subject", m.subject)
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	msg := s.encode(m)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = s.send(addr, auth, s.cfg.From, []string{m.to}, msg)
		if lastErr == nil {
			slog.Info("Email sent", "to", m.to, "subject", m.subject, "attempt", attempt)
			return nil
		}
		slog.Error("Failed to send email", "to", m.to, "attempt", attempt, "error", lastErr)

		if attempt == maxAttempts {
			break
		}
		wait := retryBaseWait << (attempt - 1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("failed to send email after %d attempts: %w", maxAttempts, lastErr)
}
