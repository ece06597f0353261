package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kinkando/photo-feed-service/model"
	"github.com/kinkando/photo-feed-service/pkg/google"
	"github.com/kinkando/photo-feed-service/pkg/logger"
	"github.com/kinkando/photo-feed-service/pkg/profile"
	"github.com/kinkando/photo-feed-service/pkg/session"
	"github.com/kinkando/photo-feed-service/repository"
)

type Authen interface {
	SignUp(ctx context.Context, req model.SignUpRequest) (model.AuthResult, error)
	SignIn(ctx context.Context, req model.SignInRequest) (model.AuthResult, error)
	SignOut(ctx context.Context, accessToken string) error
	ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error
	RefreshToken(ctx context.Context, refreshToken string) (model.JWT, error)
}

type authen struct {
	validate        *validator.Validate
	identity        google.Identity
	userService     User
	cacheRepository repository.Cache
	jwtService      JWTService
	observer        session.Observer
	now             func() time.Time
}

func NewAuthenService(
	validate *validator.Validate,
	identity google.Identity,
	userService User,
	cacheRepository repository.Cache,
	jwtService JWTService,
	observer session.Observer,
) Authen {
	return &authen{
		validate:        validate,
		identity:        identity,
		userService:     userService,
		cacheRepository: cacheRepository,
		jwtService:      jwtService,
		observer:        observer,
		now:             time.Now,
	}
}

func (s *authen) SignUp(ctx context.Context, req model.SignUpRequest) (model.AuthResult, error) {
	if err := validateForm(s.validate, req); err != nil {
		return model.AuthResult{}, err
	}

	identity, err := s.identity.SignUp(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		logger.Context(ctx).Error(err)
		return model.AuthResult{}, model.NewAuthenticationError(err)
	}

	if err = s.userService.SyncIdentity(ctx, identity); err != nil {
		return model.AuthResult{}, err
	}

	return s.startSession(ctx, identity, model.MessageAccountCreated)
}

// SignIn does not fail when the profile merge fails; the account is usable
// and the next sign-in retries the merge.
func (s *authen) SignIn(ctx context.Context, req model.SignInRequest) (model.AuthResult, error) {
	if err := validateForm(s.validate, req); err != nil {
		return model.AuthResult{}, err
	}

	identity, err := s.identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		logger.Context(ctx).Error(err)
		return model.AuthResult{}, model.NewAuthenticationError(err)
	}

	if err = s.userService.SyncIdentity(ctx, identity); err != nil {
		logger.Context(ctx).Warnf("sync user %s on sign in: %s", identity.UID, err.Error())
	}

	return s.startSession(ctx, identity, model.MessageSignedIn)
}

func (s *authen) SignOut(ctx context.Context, accessToken string) error {
	claims, err := s.jwtService.DecodeAccessToken(ctx, accessToken)
	if err != nil {
		logger.Context(ctx).Error(err)
		return model.NewUnauthenticatedError(err.Error(), "Please sign in first")
	}

	if err = s.endSession(ctx, claims.Role, claims.UserID, claims.SessionID); err != nil {
		return &model.Error{Kind: model.OperationError, Message: model.MessageSignOutFailed, Err: err}
	}

	s.publish(ctx, claims.UserID, session.SignedOut)

	if err = s.identity.RevokeSession(ctx, claims.UserID); err != nil {
		logger.Context(ctx).Error(err)
		return &model.Error{Kind: model.OperationError, Message: model.MessageSignOutFailed, Err: err}
	}
	return nil
}

func (s *authen) ResetPassword(ctx context.Context, req model.ResetPasswordRequest) error {
	if err := validateForm(s.validate, req); err != nil {
		return err
	}

	if err := s.identity.SendPasswordResetEmail(ctx, req.Email); err != nil {
		logger.Context(ctx).Error(err)
		return model.NewAuthenticationError(err)
	}
	return nil
}

func (s *authen) RefreshToken(ctx context.Context, refreshToken string) (model.JWT, error) {
	claims, err := s.jwtService.DecodeRefreshToken(ctx, refreshToken)
	if err != nil {
		logger.Context(ctx).Error(err)
		return model.JWT{}, model.NewUnauthenticatedError(err.Error(), "Please sign in again")
	}

	found, err := s.cacheRepository.ExistsToken(ctx, profile.Refresh, claims.Role, claims.UserID, claims.SessionID)
	if err != nil {
		logger.Context(ctx).Error(err)
		return model.JWT{}, model.NewOperationError("refresh token", err)
	}
	if !found {
		err = errors.New("refresh token is not found")
		logger.Context(ctx).Error(err)
		return model.JWT{}, model.NewUnauthenticatedError(err.Error(), "Please sign in again")
	}

	jwt, err := s.createToken(ctx, profile.Profile{UserID: claims.UserID, Email: claims.Email, Role: claims.Role})
	if err != nil {
		return model.JWT{}, model.NewOperationError("refresh token", err)
	}

	if err = s.endSession(ctx, claims.Role, claims.UserID, claims.SessionID); err != nil {
		return model.JWT{}, model.NewOperationError("refresh token", err)
	}

	return jwt, nil
}

func (s *authen) startSession(ctx context.Context, identity model.Identity, message string) (model.AuthResult, error) {
	jwt, err := s.createToken(ctx, profile.Profile{
		UserID: identity.UID,
		Email:  identity.Email,
		Role:   profile.ParseRole(identity.Role),
	})
	if err != nil {
		return model.AuthResult{}, model.NewOperationError("create session", err)
	}

	s.publish(ctx, identity.UID, session.SignedIn)

	displayName := identity.DisplayName
	if displayName == "" {
		displayName = model.UnknownDisplayName
	}

	return model.AuthResult{
		User: model.AuthUser{
			ID:          identity.UID,
			DisplayName: displayName,
			Email:       identity.Email,
		},
		Token:   jwt,
		Message: message,
	}, nil
}

func (s *authen) createToken(ctx context.Context, user profile.Profile) (jwt model.JWT, err error) {
	accessToken, refreshToken := s.jwtService.EncodeJWT(ctx, user)

	jwt.AccessToken, err = s.jwtService.SignedJWT(ctx, accessToken)
	if err != nil {
		logger.Context(ctx).Error(err)
		return
	}

	jwt.RefreshToken, err = s.jwtService.SignedJWT(ctx, refreshToken)
	if err != nil {
		logger.Context(ctx).Error(err)
		return
	}

	if err = s.cacheRepository.CreateAccessToken(ctx, accessToken); err != nil {
		return
	}

	if err = s.cacheRepository.CreateRefreshToken(ctx, refreshToken); err != nil {
		return
	}

	return jwt, nil
}

func (s *authen) endSession(ctx context.Context, role profile.Role, userID, sessionID string) error {
	if err := s.cacheRepository.DeleteToken(ctx, profile.Access, role, userID, sessionID); err != nil {
		return err
	}
	return s.cacheRepository.DeleteToken(ctx, profile.Refresh, role, userID, sessionID)
}

// publish never fails the caller; subscribers are best effort.
func (s *authen) publish(ctx context.Context, userID string, state session.State) {
	err := s.observer.Publish(ctx, session.Event{UserID: userID, State: state, At: s.now()})
	if err != nil {
		logger.Context(ctx).Warnf("publish %s for %s: %s", state, userID, err.Error())
	}
}
