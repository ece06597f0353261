package google

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"firebase.google.com/go/auth"
	"github.com/kinkando/photo-feed-service/model"
	"github.com/kinkando/photo-feed-service/pkg/logger"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	roleClaim                = "role"
	passwordResetRequestType = "PASSWORD_RESET"
)

// Identity is the email/password identity provider. Account creation, sign-in
// and password reset go through the Identity Toolkit REST API; everything
// else uses the Admin SDK.
type Identity interface {
	SignUp(ctx context.Context, email, password, displayName string) (model.Identity, error)
	SignIn(ctx context.Context, email, password string) (model.Identity, error)
	SendPasswordResetEmail(ctx context.Context, email string) error
	GetUser(ctx context.Context, uid string) (model.Identity, error)
	RevokeSession(ctx context.Context, uid string) error
	ListUsers(ctx context.Context) ([]model.Identity, error)
}

type identity struct {
	authClient *auth.Client
	toolkit    *identitytoolkit.Service
}

// NewIdentity expects httpClient to attach the web API key to every request.
func NewIdentity(authClient *auth.Client, httpClient *http.Client) Identity {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	toolkit, err := identitytoolkit.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		logger.Fatalf("identity toolkit: new service: %s", err.Error())
	}

	return &identity{
		authClient: authClient,
		toolkit:    toolkit,
	}
}

func (i *identity) SignUp(ctx context.Context, email, password, displayName string) (model.Identity, error) {
	res, err := i.toolkit.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	}).Context(ctx).Do()
	if err != nil {
		return model.Identity{}, newIdentityError(err)
	}

	user, err := i.GetUser(ctx, res.LocalId)
	if err != nil {
		return model.Identity{}, err
	}
	user.IDToken = res.IdToken
	if user.DisplayName == "" {
		user.DisplayName = displayName
	}
	return user, nil
}

func (i *identity) SignIn(ctx context.Context, email, password string) (model.Identity, error) {
	res, err := i.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return model.Identity{}, newIdentityError(err)
	}

	token, err := i.authClient.VerifyIDToken(ctx, res.IdToken)
	if err != nil {
		return model.Identity{}, newIdentityError(err)
	}

	user, err := i.GetUser(ctx, token.UID)
	if err != nil {
		return model.Identity{}, err
	}
	user.IDToken = res.IdToken
	if role, ok := token.Claims[roleClaim].(string); ok {
		user.Role = role
	}
	return user, nil
}

func (i *identity) SendPasswordResetEmail(ctx context.Context, email string) error {
	_, err := i.toolkit.Relyingparty.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		Email:       email,
		RequestType: passwordResetRequestType,
	}).Context(ctx).Do()
	if err != nil {
		return newIdentityError(err)
	}
	return nil
}

func (i *identity) GetUser(ctx context.Context, uid string) (model.Identity, error) {
	record, err := i.authClient.GetUser(ctx, uid)
	if err != nil {
		return model.Identity{}, newIdentityError(err)
	}
	return toIdentity(record), nil
}

func (i *identity) RevokeSession(ctx context.Context, uid string) error {
	if err := i.authClient.RevokeRefreshTokens(ctx, uid); err != nil {
		return newIdentityError(err)
	}
	return nil
}

func (i *identity) ListUsers(ctx context.Context) ([]model.Identity, error) {
	users := make([]model.Identity, 0)
	iter := i.authClient.Users(ctx, "")
	for {
		user, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, toIdentity(user.UserRecord))
	}
	return users, nil
}

func toIdentity(record *auth.UserRecord) model.Identity {
	var user model.Identity
	if record == nil {
		return user
	}
	if record.UserInfo != nil {
		user.UID = record.UID
		user.DisplayName = record.DisplayName
		user.Email = record.Email
		user.PhotoURL = record.PhotoURL
	}
	if record.UserMetadata != nil {
		if record.UserMetadata.CreationTimestamp > 0 {
			user.CreatedAt = time.UnixMilli(record.UserMetadata.CreationTimestamp)
		}
		if record.UserMetadata.LastLogInTimestamp > 0 {
			user.LastSignInAt = time.UnixMilli(record.UserMetadata.LastLogInTimestamp)
		}
	}
	if role, ok := record.CustomClaims[roleClaim].(string); ok {
		user.Role = role
	}
	return user
}
