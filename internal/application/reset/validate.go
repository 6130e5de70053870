package reset

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// report form field names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// min must stay equal to domain.MinPasswordLength.
type passwordInput struct {
	NewPassword     string `form:"new_password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirm_password" validate:"eqfield=NewPassword"`
}

type linkInput struct {
	OrganizationID string `form:"organization_id" validate:"required,max=128"`
	Email          string `form:"email" validate:"required,email,max=254"`
}

// validatePasswords reports a mismatch before a length problem.
func validatePasswords(newPassword, confirmPassword string) error {
	err := validate.Struct(passwordInput{NewPassword: newPassword, ConfirmPassword: confirmPassword})
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return domain.ErrInternal(err)
	}
	for _, fe := range ves {
		if fe.Tag() == "eqfield" {
			return domain.ErrPasswordMismatch()
		}
	}
	return domain.ErrPasswordTooShort(domain.MinPasswordLength)
}

func validateLinkInput(organizationID, email string) error {
	err := validate.Struct(linkInput{OrganizationID: organizationID, Email: email})
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return domain.ErrInternal(err)
	}
	fe := ves[0]
	return domain.ErrInvalidField(fe.Field(), fe.Tag())
}
