package profile

import (
	"context"
	"errors"
)

type Role string

const (
	Admin Role = "admin"
	User  Role = "user"
)

type profileKey struct{}

var (
	ErrNoProfile = errors.New("no signed-in profile in context")
	ErrNotAdmin  = errors.New("signed-in profile is not an admin")
)

// Profile is the signed-in caller attached to a request context.
type Profile struct {
	UserID string `json:"userID"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

func (p Profile) IsAdmin() bool {
	return p.Role == Admin
}

// ParseRole reads the identity provider's role claim. Anything but "admin"
// is a regular user.
func ParseRole(role string) Role {
	if Role(role) == Admin {
		return Admin
	}
	return User
}

func WithProfile(ctx context.Context, profile Profile) context.Context {
	return context.WithValue(ctx, profileKey{}, profile)
}

func UseProfile(ctx context.Context) (Profile, error) {
	profile, ok := ctx.Value(profileKey{}).(Profile)
	if !ok || profile.UserID == "" {
		return Profile{}, ErrNoProfile
	}
	return profile, nil
}

func UseAdminProfile(ctx context.Context) (Profile, error) {
	profile, err := UseProfile(ctx)
	if err != nil {
		return Profile{}, err
	}
	if !profile.IsAdmin() {
		return Profile{}, ErrNotAdmin
	}
	return profile, nil
}
