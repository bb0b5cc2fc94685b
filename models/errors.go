package models

import (
	"github.com/samber/oops"
)

// Error codes carried by oops errors returned from the services. They are
// stable and exposed to clients as the response code_type.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeNotAuthorized      = "NOT_AUTHORIZED"
	CodeNotFound           = "NOT_FOUND"
	CodeSlugTaken          = "SLUG_TAKEN"
	CodeCategoryTaken      = "CATEGORY_TAKEN"
	CodeCategoryInUse      = "CATEGORY_IN_USE"
	CodeValidation         = "VALIDATION_FAILED"
	CodeRateLimited        = "RATE_LIMITED"
)

// ErrorCode returns the oops code attached to err, or "" for plain errors.
func ErrorCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}
