package goTodo

import "errors"

// Sentinel errors returned by Engine methods. Compare with errors.Is; most
// are wrapped with detail.
var (
	// ErrValidation reports a malformed or missing input field.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized reports a missing, forged, foreign-purpose, or revoked
	// session token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound reports a task that does not exist for the caller. Foreign
	// tasks and malformed ids are indistinguishable from missing ones.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail reports a registration for an email already in use.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPersistence reports a store failure.
	ErrPersistence = errors.New("persistence failure")
	// ErrLoginRateLimited reports an exhausted failed-login budget.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRegistrationRateLimited reports too many registrations from one IP.
	ErrRegistrationRateLimited = errors.New("registration rate limited")
	// ErrEngineNotReady is returned by methods called on a nil Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
