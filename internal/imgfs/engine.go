// Package imgfs implements the ImgFS storage engine: a single-file photo
// store that packs many small images into one append-mostly container with
// a fixed-size metadata table at the head (spec.md §1-3).
package imgfs

import (
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/epfl-sysnet/imgfs/internal/fsx"
)

// DefaultMaxFiles, DefaultThumbRes and DefaultSmallRes mirror the imgfscmd
// CLI defaults in spec.md §6.
const (
	DefaultMaxFiles = 128
	MaxMaxFiles     = 1<<32 - 1

	DefaultThumbW, DefaultThumbH = 64, 64
	MaxThumbW, MaxThumbH         = 128, 128

	DefaultSmallW, DefaultSmallH = 256, 256
	MaxSmallW, MaxSmallH         = 512, 512
)

// CreateOptions parameterizes [Create]. A zero MaxFiles, and a thumbnail or
// small resolution whose width and height are both zero, are replaced by the
// spec.md §6 defaults; a resolution with only one zero side is rejected with
// [ErrResolutions].
type CreateOptions struct {
	MaxFiles           uint32
	ThumbW, ThumbH     uint16
	SmallW, SmallH     uint16
}

// Engine is the explicit handle bound to one open container, replacing the
// original design's process-wide globals (spec.md §9 "Design notes"). It
// owns the in-memory metadata table; no other component holds pointers into
// it. A single mutex (the "gate", spec.md §4.F) serializes every operation.
type Engine struct {
	mu        sync.Mutex
	container *container
}

// Create creates a new, empty container at path and returns an Engine bound
// to it. It corresponds to spec.md §4.E create.
func Create(fs fsx.FS, path string, opts CreateOptions) (*Engine, error) {
	maxFiles := opts.MaxFiles
	if maxFiles == 0 {
		maxFiles = DefaultMaxFiles
	}

	resized, err := resolveResizedRes(opts)
	if err != nil {
		return nil, err
	}

	c, err := createContainer(fs, path, maxFiles, resized)
	if err != nil {
		return nil, err
	}

	return &Engine{container: c}, nil
}

func resolveResizedRes(opts CreateOptions) ([4]uint16, error) {
	thumbW, thumbH := opts.ThumbW, opts.ThumbH
	if thumbW == 0 && thumbH == 0 {
		thumbW, thumbH = DefaultThumbW, DefaultThumbH
	}

	smallW, smallH := opts.SmallW, opts.SmallH
	if smallW == 0 && smallH == 0 {
		smallW, smallH = DefaultSmallW, DefaultSmallH
	}

	if thumbW == 0 || thumbH == 0 || thumbW > MaxThumbW || thumbH > MaxThumbH {
		return [4]uint16{}, fmt.Errorf("thumb_res out of range: %w", ErrResolutions)
	}

	if smallW == 0 || smallH == 0 || smallW > MaxSmallW || smallH > MaxSmallH {
		return [4]uint16{}, fmt.Errorf("small_res out of range: %w", ErrResolutions)
	}

	return [4]uint16{thumbW, thumbH, smallW, smallH}, nil
}

// Open opens an existing container at path and returns an Engine bound to
// it, reading the header and the full metadata table into memory.
func Open(fs fsx.FS, path string) (*Engine, error) {
	c, err := openContainer(fs, path)
	if err != nil {
		return nil, err
	}

	return &Engine{container: c}, nil
}

// Close releases the engine's container. Dropping the engine is the
// replacement for the original design's explicit server_shutdown
// (spec.md §9).
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.container.close()
}

// Header returns a copy of the current header.
func (e *Engine) Header() Header {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.container.header
}

// Slots returns a copy of the current metadata table, in slot order. It
// exists for diagnostics (imgfscmd inspect) that need more than [Engine.List]
// exposes; callers must not rely on slot indices surviving future inserts.
func (e *Engine) Slots() ([]Slot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Slot, len(e.container.slots))
	copy(out, e.container.slots)

	return out, nil
}

// ListMode selects the output shape of [Engine.List].
type ListMode int

const (
	// ListJSON returns `{"Images": [img_id, ...]}` in slot order.
	ListJSON ListMode = iota
	// ListStdout renders a human-readable summary.
	ListStdout
)

// List implements spec.md §4.E list. Both modes return the rendered output
// as a string (see json.go) and write nothing themselves: ListStdout gives
// the human-readable header-and-slots summary, ListJSON the machine-readable
// form.
func (e *Engine) List(mode ListMode) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch mode {
	case ListJSON:
		return encodeListJSON(e.container.slots), nil
	case ListStdout:
		return renderListStdout(e.container.header, e.container.slots), nil
	default:
		return "", fmt.Errorf("list mode %d: %w", mode, ErrInvalidArgument)
	}
}

// Insert implements spec.md §4.E insert.
func (e *Engine) Insert(buf []byte, imgID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.container

	if c.header.NbFiles >= c.header.MaxFiles {
		return ErrImgfsFull
	}

	idx := firstEmptySlot(c.slots)
	if idx < 0 {
		// Invariant 1 plus the count check above guarantee this cannot
		// happen; treat it as a corrupt table rather than panicking.
		return fmt.Errorf("no empty slot despite nb_files < max_files: %w", ErrRuntime)
	}

	// Zero the slot on disk before touching it further. spec.md §9 flags the
	// original implementation as weak here (it never zeroes on disk before
	// populating), so a crash mid-insert can leave a stale NON_EMPTY slot
	// with a half-written payload; this implementation adopts the
	// recommended stricter order: zero slot on disk -> write payload ->
	// write slot with is_valid=NON_EMPTY -> write header.
	c.slots[idx] = zeroSlot()
	if err := c.writeSlot(idx); err != nil {
		return err
	}

	// Step 3: zero the target slot, compute its SHA and id.
	c.slots[idx] = Slot{
		ImgID: truncateImgID(imgID),
		SHA:   sha256.Sum256(buf),
	}

	// Step 4: mark it valid and account for it, in memory only — nothing is
	// persisted yet. Every failure path below up to and including the slot
	// write undoes exactly this, per spec.md §7: "must decrement nb_files and
	// zero the slot in memory to preserve invariant 1". Once the slot is on
	// disk, a failed header write leaves the in-memory state as it is.
	c.slots[idx].IsValid = true
	c.header.NbFiles++

	rollback := func() {
		c.slots[idx] = zeroSlot()
		c.header.NbFiles--
	}

	// Step 5: decode to learn original dimensions.
	w, h, err := decodeJPEGSize(buf)
	if err != nil {
		rollback()
		return err
	}

	c.slots[idx].OrigW = uint32(w)
	c.slots[idx].OrigH = uint32(h)

	// Step 6: dedup scan.
	if err := dedup(c.slots, idx); err != nil {
		rollback()
		return err
	}

	// Step 7: append the original payload if dedup found no content match.
	if c.slots[idx].Offset[OrigRes] == 0 {
		off, err := c.appendPayload(buf)
		if err != nil {
			rollback()
			return err
		}

		c.slots[idx].Offset[OrigRes] = off
		c.slots[idx].Size[OrigRes] = uint32(len(buf))
	}

	// Step 8: persist. Write the slot (now is_valid=NON_EMPTY, payload
	// already on disk) before the header, per spec.md §9's crash-ordering
	// recommendation: a crash between these two leaves nb_files in the
	// header one behind a slot that is already fully written, never ahead.
	c.header.Version++

	if err := c.writeSlot(idx); err != nil {
		rollback()
		c.header.Version--
		return err
	}

	if err := c.writeHeader(); err != nil {
		return err
	}

	return nil
}

func firstEmptySlot(slots []Slot) int {
	for i, s := range slots {
		if !s.IsValid {
			return i
		}
	}

	return -1
}

// Read implements spec.md §4.E read.
func (e *Engine) Read(imgID string, r Resolution) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.container

	idx := findValidSlot(c.slots, imgID)
	if idx < 0 {
		return nil, ErrImageNotFound
	}

	if r != OrigRes && c.slots[idx].Size[r] == 0 {
		if err := e.lazilyResizeLocked(r, idx); err != nil {
			return nil, err
		}
	}

	slot := c.slots[idx]

	return c.readPayload(slot.Offset[r], slot.Size[r])
}

// Delete implements spec.md §4.E delete.
func (e *Engine) Delete(imgID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	c := e.container

	idx := findValidSlot(c.slots, imgID)
	if idx < 0 {
		return ErrImageNotFound
	}

	c.slots[idx].IsValid = false

	if err := c.writeSlot(idx); err != nil {
		c.slots[idx].IsValid = true
		return err
	}

	c.header.NbFiles--
	c.header.Version++

	if err := c.writeHeader(); err != nil {
		return err
	}

	return nil
}

func findValidSlot(slots []Slot, imgID string) int {
	for i, s := range slots {
		if s.IsValid && s.ImgID == imgID {
			return i
		}
	}

	return -1
}

// lazilyResizeLocked implements spec.md §4.D. Caller must hold e.mu.
func (e *Engine) lazilyResizeLocked(r Resolution, idx int) error {
	if r < 0 || r >= NbRes {
		return ErrResolutions
	}

	c := e.container
	slot := c.slots[idx]

	if !slot.IsValid {
		return ErrInvalidImgID
	}

	if r == OrigRes || slot.Size[r] != 0 {
		return nil // no-op success
	}

	orig, err := c.readPayload(slot.Offset[OrigRes], slot.Size[OrigRes])
	if err != nil {
		return err
	}

	target := int(c.header.targetWidth(r))

	encoded, err := resizeJPEG(orig, target)
	if err != nil {
		return err
	}

	off, err := c.appendPayload(encoded)
	if err != nil {
		return err
	}

	slot.Offset[r] = off
	slot.Size[r] = uint32(len(encoded))
	c.slots[idx] = slot

	// header.version is NOT incremented: a resize caches a derivative, it
	// is not a logical mutation (invariant 6, spec.md §3).
	return c.writeSlot(idx)
}
