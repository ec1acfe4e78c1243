// Package services holds the workspace and invitation operations. Each
// public method validates its input, re-reads the caller's membership,
// and returns errors from the apperr taxonomy only.
package services

import (
	"errors"
	"time"

	"github.com/dimitrije/workspace-invites/internal/apperr"
	"github.com/dimitrije/workspace-invites/internal/repository"
	"github.com/go-playground/validator/v10"
)

// Clock returns the current time. Tests pin it to make expiry deterministic.
type Clock func() time.Time

var validate = validator.New()

// notFoundAs maps repository.ErrNotFound to target and hides every other
// storage failure behind apperr.Upstream.
func notFoundAs(err error, target *apperr.Error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return apperr.Translate(err)
}

// firstValidationError maps the first failing field of a validator error
// through fields, keyed by "Field.tag".
func firstValidationError(err error, fields map[string]*apperr.Error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Translate(err)
	}
	for _, fe := range verrs {
		if e, ok := fields[fe.Field()+"."+fe.Tag()]; ok {
			return e
		}
	}
	return apperr.Upstream(err)
}
