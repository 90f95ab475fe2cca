// Package account implements the signup and login forms: field rules,
// per-field error messages and a simulated submission.
package account

import (
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Jobs accepted by the signup form.
var Jobs = []string{"teacher", "developer", "doctor"}

// Genders accepted by the signup form.
var Genders = []string{"male", "female"}

const passwordSpecials = "!@#$%^&*"

// SignupForm is the new-account form.
type SignupForm struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,strongpassword"`
	Gender   string `json:"gender" validate:"required,oneof=male female"`
	Job      string `json:"job" validate:"required,oneof=teacher developer doctor"`
	Terms    bool   `json:"terms" validate:"accepted"`
}

// LoginForm is the sign-in form.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Form is anything Submitter can send.
type Form interface {
	Validate() FieldErrors
}

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// Validate checks the signup rules. It returns nil when the form is valid.
func (f SignupForm) Validate() FieldErrors {
	return check(f)
}

// Validate checks the login rules. It returns nil when the form is valid.
func (f LoginForm) Validate() FieldErrors {
	return check(f)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("accepted", func(fl validator.FieldLevel) bool {
		return fl.Field().Bool()
	}, true)
	return v
}

// StrongPassword reports whether pw has at least 8 characters including a
// lowercase letter, an uppercase letter, a digit and one of !@#$%^&*.
// Letters and digits count only in their ASCII ranges.
func StrongPassword(pw string) bool {
	var lower, upper, digit, special bool
	for _, r := range pw {
		switch {
		case 'a' <= r && r <= 'z':
			lower = true
		case 'A' <= r && r <= 'Z':
			upper = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return lower && upper && digit && special && len([]rune(pw)) >= 8
}

func check(form any) FieldErrors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"form": err.Error()}
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

// message renders the user-facing text for one failed rule.
func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		switch field {
		case "gender":
			return "Please choose your gender"
		case "job":
			return "Please select your job"
		}
		return field + " is a required field"
	case "email":
		return field + " must be a valid email"
	case "min":
		return field + " must be " + fe.Param() + " characters or more"
	case "strongpassword":
		return "Must Contain 8 Characters, One Uppercase, One Lowercase, One Number and One Special Case Character"
	case "oneof":
		return field + " must be one of the following values: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "accepted":
		return "The terms and conditions must be accepted."
	}
	return field + " is invalid"
}
