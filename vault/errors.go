package vault

import "errors"

var (
	// ErrStorageRequired is returned when no storage capability is provided.
	ErrStorageRequired = errors.New("vault storage required")

	// ErrRootRequired is returned when the vault root is empty.
	ErrRootRequired = errors.New("vault root required")

	// ErrInvalidPath is returned for relative paths that escape the vault area.
	ErrInvalidPath = errors.New("invalid relative path")

	// ErrEnumeration wraps failures while listing a vault area.
	ErrEnumeration = errors.New("enumeration failed")

	// ErrNotFound is returned when a file does not exist in the unprocessed area.
	ErrNotFound = errors.New("file not found")

	// ErrAlreadyProcessed is returned when the processed destination already exists.
	ErrAlreadyProcessed = errors.New("file already processed")

	// ErrMove wraps failures while moving a file into the processed area.
	ErrMove = errors.New("move failed")

	// ErrUnknownIdentity is returned when parsing an unrecognized identity policy.
	ErrUnknownIdentity = errors.New("unknown identity policy")
)
