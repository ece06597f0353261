package model

import "errors"

type JWT struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type SignUpRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	DisplayName     string `json:"displayName" validate:"required"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type AuthUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

type AuthResult struct {
	User    AuthUser `json:"user"`
	Token   JWT      `json:"token"`
	Message string   `json:"message"`
}

const (
	AuthCodeEmailAlreadyInUse    = "auth/email-already-in-use"
	AuthCodeInvalidEmail         = "auth/invalid-email"
	AuthCodeWeakPassword         = "auth/weak-password"
	AuthCodeUserNotFound         = "auth/user-not-found"
	AuthCodeWrongPassword        = "auth/wrong-password"
	AuthCodeInvalidCredential    = "auth/invalid-credential"
	AuthCodeUserDisabled         = "auth/user-disabled"
	AuthCodeTooManyRequests      = "auth/too-many-requests"
	AuthCodeNetworkRequestFailed = "auth/network-request-failed"
	AuthCodeOperationNotAllowed  = "auth/operation-not-allowed"
	AuthCodeRequiresRecentLogin  = "auth/requires-recent-login"
	AuthCodeInternalError        = "auth/internal-error"
)

const (
	invalidCredentialMessage     = "Invalid email or password. Please check your credentials and try again."
	defaultAuthenticationMessage = "An error occurred. Please try again."
)

var authErrorMessages = map[string]string{
	AuthCodeEmailAlreadyInUse:    "An account with this email already exists.",
	AuthCodeInvalidEmail:         "Please enter a valid email address.",
	AuthCodeWeakPassword:         "Password should be at least 6 characters long.",
	AuthCodeUserNotFound:         invalidCredentialMessage,
	AuthCodeWrongPassword:        invalidCredentialMessage,
	AuthCodeInvalidCredential:    invalidCredentialMessage,
	AuthCodeUserDisabled:         "This account has been disabled. Please contact support.",
	AuthCodeTooManyRequests:      "Too many failed attempts. Please try again later.",
	AuthCodeNetworkRequestFailed: "Network error. Please check your connection and try again.",
	AuthCodeOperationNotAllowed:  "Email/password sign in is not enabled. Please contact support.",
	AuthCodeRequiresRecentLogin:  "Please sign in again to complete this action.",
}

// AuthErrorMessage returns the user-facing text for an identity provider code.
func AuthErrorMessage(code string) string {
	if message, ok := authErrorMessages[code]; ok {
		return message
	}
	return defaultAuthenticationMessage
}

// IdentityError carries the provider code next to the raw provider error.
type IdentityError struct {
	Code string
	Err  error
}

func (e *IdentityError) Error() string {
	return e.Code + ": " + e.Err.Error()
}

func (e *IdentityError) Unwrap() error {
	return e.Err
}

// NewAuthenticationError maps an identity provider failure onto the fixed
// message table; raw provider text never reaches Message.
func NewAuthenticationError(err error) *Error {
	code := AuthCodeInternalError
	var identityErr *IdentityError
	if errors.As(err, &identityErr) {
		code = identityErr.Code
	}
	return &Error{Kind: AuthenticationError, Message: AuthErrorMessage(code), Err: err}
}

const (
	MessageAccountCreated    = "Account created successfully!"
	MessageSignedIn          = "Signed in successfully!"
	MessageSignedOut         = "Signed out successfully!"
	MessagePasswordResetSent = "Password reset email sent!"
	MessageSignOutFailed     = "Failed to sign out"
)

const (
	MessageFillAllFields    = "Please fill in all fields"
	MessagePasswordMismatch = "Passwords do not match"
	MessagePasswordTooShort = "Password must be at least 6 characters long"
	MessageInvalidEmail     = "Please enter a valid email address."
)
