// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrValidation is returned when a required field (email or password) is empty.
	ErrValidation = errors.New("email and password are required")

	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned for both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionInvalid is returned when a session is expired, revoked or
	// does not belong to the user named in the cookie.
	ErrSessionInvalid = errors.New("session is no longer valid")
)
