package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wellpass/wellpass-backend/internal/config"
)

func TestSendInvitation_RendersTemplate(t *testing.T) {
	svc, err := NewEmailService(config.SMTPConfig{Host: "smtp.test", Port: 25, From: "no-reply@wellpass.test", FromName: "Wellpass"})
	require.NoError(t, err)

	var sent []byte
	impl := svc.(*emailServiceImpl)
	impl.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		assert.Equal(t, "smtp.test:25", addr)
		assert.Equal(t, []string{"ana@acme.test"}, to)
		sent = msg
		return nil
	}

	err = svc.SendInvitation(context.Background(), "ana@acme.test", "Ana", "Acme", "http://app/auth/register?email=ana%40acme.test")
	require.NoError(t, err)

	body := string(sent)
	assert.True(t, strings.Contains(body, "Subject: Acme invited you to Wellpass"))
	assert.True(t, strings.Contains(body, "Hi Ana"))
	assert.True(t, strings.Contains(body, "Message-ID: <"))
	assert.True(t, strings.Contains(body, "\r\n\r\n"), "headers end with a blank line")
}

func TestSend_SkipsWithoutHost(t *testing.T) {
	svc, err := NewEmailService(config.SMTPConfig{})
	require.NoError(t, err)
	assert.NoError(t, svc.SendPasswordReset(context.Background(), "a@b.test", "A", "http://x", "soon"))
}

func TestSend_StopsRetryingOnCancel(t *testing.T) {
	svc, err := NewEmailService(config.SMTPConfig{Host: "smtp.test", Port: 25})
	require.NoError(t, err)

	calls := 0
	svc.(*emailServiceImpl).send = func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		return errors.New("connection refused")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = svc.SendPasswordReset(ctx, "a@b.test", "A", "http://x", "soon")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
