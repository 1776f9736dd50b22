package notification

import (
	"bytes"
	"context"
	"testing"

	"github.com/printbroker/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSMTPSender_BuildMessage(t *testing.T) {
	sender := NewSMTPSender(config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		From:     "jobs@printbroker.example",
		FromName: "Print Brokerage",
	})

	msg, err := sender.buildMessage(Message{
		To:      "orders@acme.example",
		Subject: "Purchase order PO-000007",
		Text:    "Execution ID J00042-ACME.1",
		HTML:    "<p>Execution ID J00042-ACME.1</p>",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "orders@acme.example")
	assert.Contains(t, raw, "jobs@printbroker.example")
	assert.Contains(t, raw, "Purchase order PO-000007")
	assert.Contains(t, raw, "J00042-ACME.1")
}

func TestSMTPSender_InvalidRecipient(t *testing.T) {
	sender := NewSMTPSender(config.SMTPConfig{Host: "smtp.example.com", From: "jobs@printbroker.example"})

	_, err := sender.buildMessage(Message{To: "not an address"})
	assert.Error(t, err)
}

func TestNewSender(t *testing.T) {
	assert.IsType(t, &LogSender{}, NewSender(config.SMTPConfig{}, zap.NewNop()))
	assert.IsType(t, &SMTPSender{}, NewSender(config.SMTPConfig{Host: "smtp.example.com"}, nil))
}

func TestLogSender_Send(t *testing.T) {
	assert.NoError(t, NewLogSender(nil).Send(context.Background(), Message{To: "a@b.example"}))
}
