package usecase

import (
	"context"
	"fmt"
	"html"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/model"
	"github.com/vitor-afonso/iron-connections-server/shared/mailer"
)

// WelcomeNotifier greets a newly signed up user.
type WelcomeNotifier interface {
	NotifySignup(ctx context.Context, user *model.User) error
}

type mailWelcomeNotifier struct {
	mailer *mailer.Mailer
}

func NewMailWelcomeNotifier(m *mailer.Mailer) WelcomeNotifier {
	return &mailWelcomeNotifier{mailer: m}
}

func (n *mailWelcomeNotifier) NotifySignup(_ context.Context, user *model.User) error {
	subject := "Welcome to Iron Connections"
	text := fmt.Sprintf("Hi %s,\n\nyour account for %s is ready. Log in and start connecting.\n", user.Username, user.Email)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>your account for <strong>%s</strong> is ready. Log in and start connecting.</p>",
		html.EscapeString(user.Username),
		html.EscapeString(user.Email),
	)

	return n.mailer.SendHTML([]string{user.Email}, subject, body, text)
}
