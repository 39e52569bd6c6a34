package clips

import "errors"

var (
	// ErrInitializationFailed means the schema could not be created. A later
	// call may retry.
	ErrInitializationFailed = errors.New("clip store initialization failed")

	// ErrStorageUnavailable is returned by operations whose automatic
	// initialization failed.
	ErrStorageUnavailable = errors.New("clip storage unavailable")

	// ErrDuplicateID is returned when inserting a clip whose id already exists.
	ErrDuplicateID = errors.New("duplicate clip id")

	// ErrNotFound is returned by operations that must produce a clip but
	// found none. Plain lookups return a nil clip instead.
	ErrNotFound = errors.New("clip not found")
)
