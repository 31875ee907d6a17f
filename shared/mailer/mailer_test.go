package mailer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingSender struct {
	sent []*gomail.Message
	err  error
}

func (s *recordingSender) DialAndSend(m ...*gomail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, m...)
	return nil
}

func TestSendHTML(t *testing.T) {
	sender := &recordingSender{}
	m := NewMailer("noreply@iron.dev", sender)

	err := m.SendHTML([]string{"ada@example.com"}, "Welcome", "<p>hi</p>", "hi")
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"noreply@iron.dev"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"ada@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Welcome"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<p>hi</p>")
	assert.Contains(t, buf.String(), "text/plain")
}

func TestSend_NoRecipients(t *testing.T) {
	sender := &recordingSender{}
	m := NewMailer("noreply@iron.dev", sender)

	assert.Error(t, m.Send(Email{Subject: "x", Body: "y"}))
	assert.Empty(t, sender.sent)
}

func TestSend_PropagatesSenderError(t *testing.T) {
	boom := errors.New("smtp down")
	m := NewMailer("noreply@iron.dev", &recordingSender{err: boom})

	assert.ErrorIs(t, m.Send(Email{To: []string{"a@b.co"}, Body: "y"}), boom)
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, (&Config{Host: "smtp", Port: 0, From: "a@b.co"}).validate())
	assert.Error(t, (&Config{Host: "smtp", Port: 25}).validate())
	assert.NoError(t, (&Config{Host: "smtp", Port: 25, From: "a@b.co"}).validate())
}
