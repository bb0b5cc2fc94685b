package services

import (
	"errors"

	"github.com/samber/oops"
	"gorm.io/gorm"

	"blog-cms/models"
)

func errNotFound(resource string, id uint) error {
	return oops.Code(models.CodeNotFound).With(resource+"_id", id).Errorf("%s not found", resource)
}

func errNotAuthorized(userID, postID uint) error {
	return oops.Code(models.CodeNotAuthorized).
		With("user_id", userID).
		With("post_id", postID).
		Errorf("only the author may modify this post")
}

func errUnauthenticated() error {
	return oops.Code(models.CodeUnauthenticated).Errorf("authentication required")
}

func errValidation(field, format string, args ...any) error {
	return oops.Code(models.CodeValidation).With("field", field).Errorf(format, args...)
}

// lookupError maps a missing row to NOT_FOUND and wraps everything else.
func lookupError(err error, domain, resource string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errNotFound(resource, id)
	}
	return oops.In(domain).With(resource+"_id", id).Wrapf(err, "load %s", resource)
}
