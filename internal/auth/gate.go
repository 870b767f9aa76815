// Package auth is the admin gate: one fixed credential pair, a persisted
// "logged in" flag and a signed session cookie.
//
// The gate is deliberately simple. Passwords are compared in plaintext and
// there is no rate limiting, so it must not protect anything sensitive.
package auth

// FlagStore persists the authentication flag. storage.Adapter satisfies it.
type FlagStore interface {
	LoadAuthFlag() bool
	SaveAuthFlag(on bool) error
}

type Gate struct {
	flags    FlagStore
	email    string
	password string
}

func NewGate(flags FlagStore, email, password string) *Gate {
	return &Gate{flags: flags, email: email, password: password}
}

// Login checks the pair by exact equality. On a match the flag is persisted
// and true returned; otherwise nothing changes. A flag that cannot be saved
// counts as a failed login.
func (g *Gate) Login(email, password string) bool {
	if email != g.email || password != g.password {
		return false
	}
	return g.flags.SaveAuthFlag(true) == nil
}

func (g *Gate) Logout() error {
	return g.flags.SaveAuthFlag(false)
}

func (g *Gate) IsAuthenticated() bool {
	return g.flags.LoadAuthFlag()
}
