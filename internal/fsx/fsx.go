// Package fsx provides a fault-injectable filesystem abstraction used by the
// imgfs container layer.
//
// The engine never calls [os] directly; it goes through [FS] so that the
// "any underlying I/O failure becomes ERR_IO" contract can be exercised
// deterministically in tests via [Chaos], instead of hoping a real disk
// fails on command.
package fsx

import (
	"io"
	"os"
)

// File is the subset of *[os.File] the container layer needs: positioned
// reads/writes for header/slot/payload access, plus the handful of whole-file
// operations used at open/create time.
type File interface {
	io.Closer
	io.ReaderAt
	io.WriterAt

	// Truncate changes the size of the file. See [os.File.Truncate].
	Truncate(size int64) error

	// Stat returns file metadata. See [os.File.Stat].
	Stat() (os.FileInfo, error)

	// Sync commits the file's contents to disk. See [os.File.Sync]. Best
	// effort only: this module makes no crash-consistency guarantee beyond
	// write ordering (spec.md §9).
	Sync() error
}

// FS opens files. Two implementations exist: [Real], which wraps [os], and
// [Chaos], which injects faults for testing.
type FS interface {
	// Open opens an existing file read-only.
	Open(path string) (File, error)

	// OpenReadWrite opens an existing file for reading and writing, without
	// truncating it. See [os.OpenFile] with O_RDWR.
	OpenReadWrite(path string) (File, error)

	// Create creates a new file for reading and writing, truncating it if it
	// already exists. See [os.OpenFile] with O_RDWR|O_CREATE|O_TRUNC.
	Create(path string) (File, error)

	// Remove deletes a file. See [os.Remove].
	Remove(path string) error

	// Exists reports whether path exists.
	Exists(path string) (bool, error)
}

var _ io.ReaderAt = (*os.File)(nil)
var _ io.WriterAt = (*os.File)(nil)
