package constants

import "errors"

// Configuration errors.
var (
	ErrNoAPIConfigured    = errors.New("no API endpoint configured, use 'idops config set api <url>' or --api")
	ErrInvalidConfigKey   = errors.New("invalid configuration key")
	ErrInvalidOutputValue = errors.New("output must be one of table, json, yaml")
)

// Session and token errors.
var (
	ErrNotLoggedIn         = errors.New("not logged in, use 'idops login' first")
	ErrInvalidJWTFormat    = errors.New("invalid JWT format")
	ErrNoExpirationClaim   = errors.New("no expiration claim found")
	ErrTokenExpired        = errors.New("session token expired, use 'idops login' again")
	ErrEmptyCredentials    = errors.New("username and password are required")
	ErrNoTokenInLogin      = errors.New("login response did not include a token")
	ErrSessionFileNotFound = errors.New("session file not found")
)

// Validation errors.
var (
	ErrInvalidPageSize      = errors.New("page size must be between 1 and 500")
	ErrInvalidOffset        = errors.New("offset must not be negative")
	ErrInvalidBoolFlag      = errors.New("value must be 'true' or 'false'")
	ErrNotesRequired        = errors.New("--notes is required")
	ErrUnknownExport        = errors.New("unknown export")
	ErrUnsupportedScreen    = errors.New("unsupported screen")
	ErrInvalidTypeAssertion = errors.New("invalid type assertion")
	ErrUnknownFilter        = errors.New("unknown filter")
	ErrInvalidFilterValue   = errors.New("invalid filter value")
	ErrInvalidFilterSyntax  = errors.New("filters must be written as key=value")
	ErrAckTargets           = errors.New("pass alert IDs or --all-open, not both")
)

// File system errors.
var (
	ErrDirectoryTraversalDetected = errors.New("directory traversal detected in file path")
	ErrNotRegularFile             = errors.New("path is not a regular file")
)
