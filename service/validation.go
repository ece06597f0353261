package service

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/kinkando/photo-feed-service/model"
)

// formRules is ordered by precedence: a missing field is reported before a
// mismatch, which is reported before a short password or a bad email.
var formRules = []struct {
	tag     string
	message string
}{
	{tag: "required", message: model.MessageFillAllFields},
	{tag: "eqfield", message: model.MessagePasswordMismatch},
	{tag: "min", message: model.MessagePasswordTooShort},
	{tag: "email", message: model.MessageInvalidEmail},
}

// validateForm checks a credential form and reports the first rule it breaks
// in the wording the client shows next to the form.
func validateForm(validate *validator.Validate, form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return model.NewValidationError(err.Error())
	}

	for _, rule := range formRules {
		for _, fieldErr := range fieldErrs {
			if fieldErr.Tag() == rule.tag {
				return model.NewValidationError(rule.message)
			}
		}
	}
	return model.NewValidationError(fieldErrs[0].Error())
}
