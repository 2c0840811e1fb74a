package imgfs

import "errors"

// Error kinds, grouped by the abstract taxonomy in spec.md §7.
//
// Argument errors: the caller handed the engine something malformed.
var (
	ErrInvalidArgument    = errors.New("imgfs: invalid argument")
	ErrNotEnoughArguments = errors.New("imgfs: not enough arguments")
	ErrInvalidCommand     = errors.New("imgfs: invalid command")
	ErrInvalidImgID       = errors.New("imgfs: invalid image id")
	ErrMaxFiles           = errors.New("imgfs: invalid max_files")
	ErrResolutions        = errors.New("imgfs: invalid resolution")
)

// Container-state errors: the request was well-formed but conflicts with
// what is already on disk.
var (
	ErrImgfsFull    = errors.New("imgfs: container is full")
	ErrImageNotFound = errors.New("imgfs: image not found")
	ErrDuplicateID   = errors.New("imgfs: duplicate image id")
)

// Environment errors: something below the engine failed.
var (
	ErrIO          = errors.New("imgfs: I/O error")
	ErrOutOfMemory = errors.New("imgfs: out of memory")
	ErrImgLib      = errors.New("imgfs: image codec error")
	ErrRuntime     = errors.New("imgfs: runtime error")
)

// ErrNotImplemented marks a capability the engine deliberately does not
// offer (e.g. compaction of tombstoned payload bytes, see spec.md §9).
var ErrNotImplemented = errors.New("imgfs: not implemented")
