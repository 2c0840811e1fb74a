package fsx

import (
	"errors"
	"io/fs"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
)

// ChaosConfig controls fault injection probabilities. Each rate is a
// float64 from 0.0 (never) to 1.0 (always). The zero value disables all
// fault injection.
type ChaosConfig struct {
	// OpenFailRate controls how often Open/OpenReadWrite/Create fail.
	OpenFailRate float64

	// ReadAtFailRate controls how often File.ReadAt fails entirely.
	ReadAtFailRate float64

	// WriteAtFailRate controls how often File.WriteAt fails entirely.
	WriteAtFailRate float64

	// PartialWriteAtRate controls how often File.WriteAt writes only a
	// prefix of p before failing.
	PartialWriteAtRate float64

	// SyncFailRate controls how often File.Sync fails.
	SyncFailRate float64
}

// ChaosMode controls how [Chaos] behaves.
type ChaosMode uint8

const (
	// ChaosModeActive injects faults according to [ChaosConfig]. Default.
	ChaosModeActive ChaosMode = iota
	// ChaosModeNoOp passes every operation straight through to the wrapped FS.
	ChaosModeNoOp
)

// ChaosStats counts injected faults, for test assertions.
type ChaosStats struct {
	OpenFails     int64
	ReadAtFails   int64
	WriteAtFails  int64
	PartialWrites int64
	SyncFails     int64
}

// ChaosError marks an error as intentionally injected by [Chaos], so tests
// can tell injected failures apart from real ones with [IsChaosErr].
type ChaosError struct{ Err error }

func (e *ChaosError) Error() string { return "chaos: " + e.Err.Error() }
func (e *ChaosError) Unwrap() error { return e.Err }

// IsChaosErr reports whether err was injected by [Chaos].
func IsChaosErr(err error) bool {
	var ce *ChaosError
	return errors.As(err, &ce)
}

// Chaos wraps an [FS] and injects random I/O failures. Each injected failure
// is a [*ChaosError] wrapping an [*fs.PathError] that carries a real
// [syscall.Errno], the same shape the real OS would hand back, so errors.As
// still finds the PathError and the engine's "any I/O failure becomes
// ERR_IO" mapping sees an ordinary OS-shaped error.
type Chaos struct {
	fs     FS
	rng    *rand.Rand
	rngMu  sync.Mutex
	config ChaosConfig
	mode   atomic.Uint32

	openFails     atomic.Int64
	readAtFails   atomic.Int64
	writeAtFails  atomic.Int64
	partialWrites atomic.Int64
	syncFails     atomic.Int64
}

// NewChaos wraps fs with fault injection seeded for reproducibility.
func NewChaos(fs FS, seed int64, config ChaosConfig) *Chaos {
	if fs == nil {
		panic("fsx: nil FS")
	}

	return &Chaos{fs: fs, rng: rand.New(rand.NewSource(seed)), config: config}
}

// SetMode switches between active fault injection and passthrough.
func (c *Chaos) SetMode(m ChaosMode) { c.mode.Store(uint32(m)) }

// Stats returns the current fault injection counts.
func (c *Chaos) Stats() ChaosStats {
	return ChaosStats{
		OpenFails:     c.openFails.Load(),
		ReadAtFails:   c.readAtFails.Load(),
		WriteAtFails:  c.writeAtFails.Load(),
		PartialWrites: c.partialWrites.Load(),
		SyncFails:     c.syncFails.Load(),
	}
}

func (c *Chaos) should(mode ChaosMode, rate float64) bool {
	if mode == ChaosModeNoOp || rate <= 0 {
		return false
	}

	c.rngMu.Lock()
	defer c.rngMu.Unlock()

	return c.rng.Float64() < rate
}

func (c *Chaos) mkOpen(path, op string, openFn func() (File, error)) (File, error) {
	mode := ChaosMode(c.mode.Load())

	if c.should(mode, c.config.OpenFailRate) {
		c.openFails.Add(1)
		return nil, &ChaosError{Err: &fs.PathError{Op: op, Path: path, Err: syscall.EIO}}
	}

	f, err := openFn()
	if err != nil {
		return nil, err
	}

	return &chaosFile{f: f, chaos: c, path: path}, nil
}

func (c *Chaos) Open(path string) (File, error) {
	return c.mkOpen(path, "open", func() (File, error) { return c.fs.Open(path) })
}

func (c *Chaos) OpenReadWrite(path string) (File, error) {
	return c.mkOpen(path, "open", func() (File, error) { return c.fs.OpenReadWrite(path) })
}

func (c *Chaos) Create(path string) (File, error) {
	return c.mkOpen(path, "create", func() (File, error) { return c.fs.Create(path) })
}

func (c *Chaos) Remove(path string) error { return c.fs.Remove(path) }

func (c *Chaos) Exists(path string) (bool, error) { return c.fs.Exists(path) }

// chaosFile wraps a [File] and injects faults into positioned I/O.
type chaosFile struct {
	f     File
	chaos *Chaos
	path  string
}

func (f *chaosFile) ReadAt(p []byte, off int64) (int, error) {
	mode := ChaosMode(f.chaos.mode.Load())

	if f.chaos.should(mode, f.chaos.config.ReadAtFailRate) {
		f.chaos.readAtFails.Add(1)
		return 0, &ChaosError{Err: &fs.PathError{Op: "read", Path: f.path, Err: syscall.EIO}}
	}

	return f.f.ReadAt(p, off)
}

func (f *chaosFile) WriteAt(p []byte, off int64) (int, error) {
	mode := ChaosMode(f.chaos.mode.Load())

	if f.chaos.should(mode, f.chaos.config.WriteAtFailRate) {
		f.chaos.writeAtFails.Add(1)
		return 0, &ChaosError{Err: &fs.PathError{Op: "write", Path: f.path, Err: syscall.EIO}}
	}

	if f.chaos.should(mode, f.chaos.config.PartialWriteAtRate) && len(p) > 1 {
		f.chaos.partialWrites.Add(1)

		cutoff := 1 + f.chaos.rng.Intn(len(p)-1)
		n, err := f.f.WriteAt(p[:cutoff], off)

		if err == nil {
			err = &ChaosError{Err: &fs.PathError{Op: "write", Path: f.path, Err: syscall.ENOSPC}}
		}

		return n, err
	}

	return f.f.WriteAt(p, off)
}

func (f *chaosFile) Truncate(size int64) error { return f.f.Truncate(size) }

func (f *chaosFile) Stat() (os.FileInfo, error) { return f.f.Stat() }

func (f *chaosFile) Sync() error {
	mode := ChaosMode(f.chaos.mode.Load())

	if f.chaos.should(mode, f.chaos.config.SyncFailRate) {
		f.chaos.syncFails.Add(1)
		return &ChaosError{Err: &fs.PathError{Op: "sync", Path: f.path, Err: syscall.EIO}}
	}

	return f.f.Sync()
}

func (f *chaosFile) Close() error { return f.f.Close() }

var _ FS = (*Chaos)(nil)
var _ File = (*chaosFile)(nil)
