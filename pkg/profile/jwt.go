package profile

import (
	"fmt"

	"github.com/golang-jwt/jwt"
)

type TokenType string

const (
	Access  TokenType = "access"
	Refresh TokenType = "refresh"

	ApplicationPrefix  = "PHOTO_FEED"
	AccessTokenPrefix  = "ACCESS_TOKEN"
	RefreshTokenPrefix = "REFRESH_TOKEN"
)

type AccessToken struct {
	jwt.StandardClaims
	UserID    string    `json:"userID"`
	Email     string    `json:"email"`
	SessionID string    `json:"sessionID"`
	Role      Role      `json:"role"`
	Type      TokenType `json:"type"`
}

type RefreshToken struct {
	jwt.StandardClaims
	UserID    string    `json:"userID"`
	Email     string    `json:"email"`
	SessionID string    `json:"sessionID"`
	Role      Role      `json:"role"`
	Type      TokenType `json:"type"`
}

func (t AccessToken) Profile() Profile {
	return Profile{UserID: t.UserID, Email: t.Email, Role: t.Role}
}

// TokenKey is the redis key under which a live session token is tracked.
func TokenKey(tokenType TokenType, role Role, userID, sessionID string) string {
	prefix := AccessTokenPrefix
	if tokenType == Refresh {
		prefix = RefreshTokenPrefix
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s", ApplicationPrefix, prefix, role, userID, sessionID)
}
