package mailer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/chouaib-skitou/Festivio/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/gomail.v2"
)

var _ Mailer = (*SMTPMailer)(nil)
var _ Mailer = (*LogMailer)(nil)

func newCapturingMailer(sendErr error) (*SMTPMailer, *[]*gomail.Message) {
	var sent []*gomail.Message
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.local", Port: 2525, From: "noreply@festivio.local"}, logging.Nop{})
	m.send = func(msgs ...*gomail.Message) error {
		sent = append(sent, msgs...)
		return sendErr
	}
	return m, &sent
}

func render(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestSMTPMailer_SendVerification(t *testing.T) {
	m, sent := newCapturingMailer(nil)

	err := m.SendVerification(context.Background(), "alice@x.com", "http://api/verify/u1/tok")
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	msg := (*sent)[0]
	assert.Equal(t, []string{"alice@x.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"noreply@festivio.local"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"Verify your email"}, msg.GetHeader("Subject"))
	assert.Contains(t, render(t, msg), "http://api/verify/u1/tok")
}

func TestSMTPMailer_SendPasswordReset(t *testing.T) {
	m, sent := newCapturingMailer(nil)

	require.NoError(t, m.SendPasswordReset(context.Background(), "bob@x.com", "http://app/reset-password/tok"))
	require.Len(t, *sent, 1)
	assert.Equal(t, []string{"Reset your password"}, (*sent)[0].GetHeader("Subject"))
	assert.True(t, strings.Contains(render(t, (*sent)[0]), "reset-password/tok"))
}

func TestSMTPMailer_SendError(t *testing.T) {
	m, _ := newCapturingMailer(errors.New("connection refused"))

	err := m.SendVerification(context.Background(), "a@x.com", "l")
	assert.ErrorContains(t, err, "send mail: connection refused")
}

func TestLogMailer_NeverFails(t *testing.T) {
	m := NewLogMailer(logging.Nop{})
	assert.NoError(t, m.SendVerification(context.Background(), "a@x.com", "l"))
	assert.NoError(t, m.SendPasswordReset(context.Background(), "a@x.com", "l"))
}

func TestLogMailer_LinksOnlyAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m := NewLogMailer(logging.NewZapLogger(zap.New(core)))
	ctx := context.Background()

	require.NoError(t, m.SendVerification(ctx, "a@x.com", "http://api/verify/u1/secret-tok"))
	require.NoError(t, m.SendPasswordReset(ctx, "a@x.com", "http://app/reset-password/secret-tok"))

	for _, e := range logs.AllUntimed() {
		fields := e.ContextMap()
		assert.Equal(t, "a@x.com", fields["to"])
		if e.Level > zapcore.DebugLevel {
			assert.NotContains(t, fields, "link", "%s must not carry the link", e.Message)
		}
	}
	assert.Equal(t, 2, logs.FilterField(zap.String("link", "http://api/verify/u1/secret-tok")).Len()+
		logs.FilterField(zap.String("link", "http://app/reset-password/secret-tok")).Len())
	assert.Equal(t, 2, logs.FilterLevelExact(zapcore.InfoLevel).Len())
}
