package google

import (
	"errors"
	"net"
	"strings"

	"firebase.google.com/go/auth"
	"github.com/kinkando/photo-feed-service/model"
	"google.golang.org/api/googleapi"
)

// Identity Toolkit REST error messages, e.g. "WEAK_PASSWORD : Password should be...".
var identityToolkitCodes = map[string]string{
	"EMAIL_EXISTS":                   model.AuthCodeEmailAlreadyInUse,
	"INVALID_EMAIL":                  model.AuthCodeInvalidEmail,
	"MISSING_EMAIL":                  model.AuthCodeInvalidEmail,
	"WEAK_PASSWORD":                  model.AuthCodeWeakPassword,
	"EMAIL_NOT_FOUND":                model.AuthCodeUserNotFound,
	"USER_NOT_FOUND":                 model.AuthCodeUserNotFound,
	"INVALID_PASSWORD":               model.AuthCodeWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":      model.AuthCodeInvalidCredential,
	"INVALID_IDP_RESPONSE":           model.AuthCodeInvalidCredential,
	"USER_DISABLED":                  model.AuthCodeUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER":    model.AuthCodeTooManyRequests,
	"OPERATION_NOT_ALLOWED":          model.AuthCodeOperationNotAllowed,
	"PASSWORD_LOGIN_DISABLED":        model.AuthCodeOperationNotAllowed,
	"CREDENTIAL_TOO_OLD_LOGIN_AGAIN": model.AuthCodeRequiresRecentLogin,
	"TOKEN_EXPIRED":                  model.AuthCodeRequiresRecentLogin,
}

func newIdentityError(err error) error {
	return &model.IdentityError{Code: IdentityErrorCode(err), Err: err}
}

// IdentityErrorCode maps an Identity Toolkit or Admin SDK failure onto the
// client-side auth/* code space.
func IdentityErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		reason := strings.TrimSpace(strings.SplitN(apiErr.Message, ":", 2)[0])
		if code, ok := identityToolkitCodes[reason]; ok {
			return code
		}
		for _, item := range apiErr.Errors {
			if code, ok := identityToolkitCodes[item.Message]; ok {
				return code
			}
		}
		return model.AuthCodeInternalError
	}

	if auth.IsUserNotFound(err) {
		return model.AuthCodeUserNotFound
	}
	if auth.IsIDTokenRevoked(err) {
		return model.AuthCodeRequiresRecentLogin
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return model.AuthCodeNetworkRequestFailed
	}

	return model.AuthCodeInternalError
}
