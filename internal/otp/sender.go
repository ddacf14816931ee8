package otp

import "context"

// Sender delivers a login code to its recipient.
type Sender interface {
	SendCode(ctx context.Context, email, code string) error
}
