package model

import "time"

// Identity is the identity provider's view of a signed-in account.
type Identity struct {
	UID          string
	DisplayName  string
	Email        string
	PhotoURL     string
	Role         string
	IDToken      string
	CreatedAt    time.Time
	LastSignInAt time.Time
}

// IsFirstSession reports whether the provider has never recorded a sign-in
// after the account was created.
func (i Identity) IsFirstSession() bool {
	if i.CreatedAt.IsZero() {
		return false
	}
	if i.LastSignInAt.IsZero() {
		return true
	}
	return i.LastSignInAt.Sub(i.CreatedAt) < time.Second
}
