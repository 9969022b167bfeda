package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minitex/ipregister/internal/config"
)

func TestNewSMTPMailer_FromConfig(t *testing.T) {
	cfg := &config.Config{
		SMTPHost:     "smtp.example.org",
		SMTPPort:     2525,
		SMTPUsername: "sender",
		SMTPPassword: "secret",
		MailFrom:     "ipregister@minitex.org",
	}

	m := NewSMTPMailer(cfg)

	assert.Equal(t, "ipregister@minitex.org", m.from)
	assert.Equal(t, "smtp.example.org", m.dialer.Host)
	assert.Equal(t, 2525, m.dialer.Port)
	assert.Equal(t, "sender", m.dialer.Username)
}

func TestSend_CancelledContext(t *testing.T) {
	m := NewSMTPMailer(&config.Config{SMTPHost: "localhost", SMTPPort: 2525})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Send(ctx, "pat@example.org", nil, "subject", "body")
	require.ErrorIs(t, err, context.Canceled)
}
