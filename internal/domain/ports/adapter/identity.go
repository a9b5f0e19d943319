package adapter

import "context"

// Identity is the verified caller. Authorization decisions never trust a
// client-supplied uid; they start here.
type Identity struct {
	UID   string
	Email string
}

// IdentityVerifier validates a bearer token and yields the caller identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}
