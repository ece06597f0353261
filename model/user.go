package model

import "time"

const UnknownDisplayName = "Unknown User"

// User mirrors a users/{id} document.
type User struct {
	ID              string     `json:"id"`
	DisplayName     string     `json:"displayName"`
	Email           string     `json:"email"`
	ProfileImageURL *string    `json:"profileImageURL"`
	CreatedAt       *time.Time `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt"`
}

// UserSummary is one row of a search result.
type UserSummary struct {
	ID              string     `json:"id"`
	DisplayName     string     `json:"displayName"`
	Email           string     `json:"email"`
	ProfileImageURL *string    `json:"profileImageURL"`
	UpdatedAt       *time.Time `json:"updatedAt"`
}

// UserUpdate is a non-destructive merge into users/{id}. Nil fields are left
// untouched; ClearProfileImage writes an explicit null.
type UserUpdate struct {
	DisplayName       *string
	Email             *string
	ProfileImageURL   *string
	ClearProfileImage bool
	CreatedAt         *time.Time
	UpdatedAt         time.Time
}

type UserRequest struct {
	UserID string `param:"userID" validate:"required"`
}

type SyncUsersResult struct {
	TotalUser   uint64 `json:"totalUser"`
	TotalSynced uint64 `json:"totalSynced"`
	TotalFailed uint64 `json:"totalFailed"`
}
