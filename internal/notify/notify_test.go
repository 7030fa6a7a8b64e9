package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/megatron/internal/config"
)

func TestSendWithoutHost(t *testing.T) {
	t.Parallel()

	m := NewSMTPMailer(config.EmailSettings{From: "lab@example.com"})
	err := m.Send(context.Background(), Message{Subject: "s", Body: "b", To: []string{"a@example.com"}})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendWithoutRecipients(t *testing.T) {
	t.Parallel()

	m := NewSMTPMailer(config.EmailSettings{Host: "smtp.example.com", Port: 587, From: "lab@example.com"})
	err := m.Send(context.Background(), Message{Subject: "s", Body: "b"})
	require.Error(t, err)
}

func TestCredentialsFromEnvironment(t *testing.T) {
	t.Setenv("MEGATRON_TEST_SMTP_USER", "operator")
	t.Setenv("MEGATRON_TEST_SMTP_PASS", "secret")

	m := NewSMTPMailer(config.EmailSettings{
		Host:        "smtp.example.com",
		Port:        587,
		From:        "lab@example.com",
		UsernameEnv: "MEGATRON_TEST_SMTP_USER",
		PasswordEnv: "MEGATRON_TEST_SMTP_PASS",
	})
	require.Equal(t, "operator", m.username)
	require.Equal(t, "secret", m.password)
}

func TestUsernameDefaultsToSender(t *testing.T) {
	t.Parallel()

	m := NewSMTPMailer(config.EmailSettings{Host: "smtp.example.com", From: "lab@example.com"})
	require.Equal(t, "lab@example.com", m.username)
}

func TestBuildMessage(t *testing.T) {
	t.Parallel()

	msg, err := build("lab@example.com", Message{
		Subject: "Pump tripped",
		Body:    "ION pump current crossed limit",
		To:      []string{"a@example.com", "b@example.com"},
	})
	require.NoError(t, err)

	var b strings.Builder
	_, err = msg.WriteTo(&b)
	require.NoError(t, err)
	out := b.String()
	require.Contains(t, out, "Subject: Pump tripped")
	require.Contains(t, out, "a@example.com")
	require.Contains(t, out, "ION pump current crossed limit")
}

func TestBuildRejectsBadSender(t *testing.T) {
	t.Parallel()

	_, err := build("not an address", Message{To: []string{"a@example.com"}})
	require.Error(t, err)
}
