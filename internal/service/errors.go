package service

import "errors"

var (
	// ErrValidation rejects a request before anything is written.
	ErrValidation   = errors.New("validation failed")
	ErrUserNotFound = errors.New("user not found")
	// ErrForbidden rejects a request touching another user's data.
	ErrForbidden = errors.New("user_id does not match the authenticated user")
	// ErrPersistence wraps storage failures; the unit of work was rolled back.
	ErrPersistence = errors.New("persistence failure")
)

func validationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(msg))
}

func persistenceError(err error) error {
	return errors.Join(ErrPersistence, err)
}
