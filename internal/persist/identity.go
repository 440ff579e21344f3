package persist

import "context"

// Identity describes the signed-in player.
type Identity struct {
	UserID        string
	Authenticated bool
	// JustLoggedIn forces a remote read on the next load so a fresh login
	// picks up cloud data.
	JustLoggedIn bool
}

// IdentityProvider resolves the current identity. Implementations may
// block on a network session check; the coordinator bounds the wait.
type IdentityProvider interface {
	Identity(ctx context.Context) (Identity, error)
}

// IdentityFunc adapts a function to IdentityProvider.
type IdentityFunc func(ctx context.Context) (Identity, error)

// Identity calls f(ctx).
func (f IdentityFunc) Identity(ctx context.Context) (Identity, error) { return f(ctx) }

// StaticIdentity is a fixed identity, authenticated when UserID is set.
// The CLI builds one from configuration.
type StaticIdentity struct {
	UserID       string
	JustLoggedIn bool
}

// Identity implements IdentityProvider.
func (s StaticIdentity) Identity(context.Context) (Identity, error) {
	return Identity{
		UserID:        s.UserID,
		Authenticated: s.UserID != "",
		JustLoggedIn:  s.UserID != "" && s.JustLoggedIn,
	}, nil
}
