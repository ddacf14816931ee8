package notify

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Mailer renders the transactional emails of the platform.
type Mailer struct {
	sender  EmailSender
	codeTTL time.Duration
}

// NewMailer creates a mailer. codeTTL is quoted in login code emails.
func NewMailer(sender EmailSender, codeTTL time.Duration) *Mailer {
	return &Mailer{sender: sender, codeTTL: codeTTL}
}

// SendCode delivers a one-time login code. The code only appears in the body.
func (m *Mailer) SendCode(ctx context.Context, email, code string) error {
	body := fmt.Sprintf("Your sign-in code is %s.", code)
	if m.codeTTL > 0 {
		body += fmt.Sprintf(" It expires in %d minutes.", int(m.codeTTL.Round(time.Minute).Minutes()))
	}
	body += "\n\nIf you did not try to sign in, you can ignore this email."
	return m.sender.Send(ctx, EmailMessage{
		To:      email,
		Subject: "Your sign-in code",
		Body:    body,
	})
}

// Invite describes a team invitation email.
type Invite struct {
	Email     string
	StoreName string
	Role      string
	AcceptURL string
	ExpiresAt time.Time
}

// SendInvite delivers a team invitation link.
func (m *Mailer) SendInvite(ctx context.Context, inv Invite) error {
	store := strings.TrimSpace(inv.StoreName)
	if store == "" {
		store = "a store"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You have been invited to join %s as %s.\n\n", store, inv.Role)
	fmt.Fprintf(&b, "Accept the invitation: %s\n", inv.AcceptURL)
	if !inv.ExpiresAt.IsZero() {
		fmt.Fprintf(&b, "\nThe link expires on %s.", inv.ExpiresAt.UTC().Format("Jan 2, 2006 15:04 MST"))
	}
	return m.sender.Send(ctx, EmailMessage{
		To:      inv.Email,
		Subject: "You're invited to " + store,
		Body:    b.String(),
	})
}
