package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for configuration validation.
var (
	ErrTokenRequired  = errors.New("token is required; run 'pmsgate-cli login' first")
	ErrConfigRequired = errors.New("config is required")
	ErrNoToken        = errors.New("login response carries no token")
)

// Errors for input validation.
var (
	ErrEmptyPath   = errors.New("path is required")
	ErrInvalidPath = errors.New("path must start with /")
	ErrInvalidJSON = errors.New("request body is not valid JSON")
)
