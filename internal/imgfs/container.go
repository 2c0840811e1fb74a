package imgfs

import (
	"fmt"
	"io"

	"github.com/epfl-sysnet/imgfs/internal/fsx"
)

// container owns the open file handle and the in-memory mirror of the
// header and metadata table for one ImgFS file. It has no exported surface;
// callers go through [Engine].
type container struct {
	fs   fsx.FS
	path string
	file fsx.File

	header Header
	slots  []Slot
}

// slotOffset returns the absolute file offset of slot i.
func slotOffset(i int) int64 {
	return int64(headerSize) + int64(i)*int64(slotSize)
}

// payloadAreaStart is the first byte offset past the metadata table, per
// invariant 4 in spec.md §3.
func payloadAreaStart(maxFiles uint32) int64 {
	return int64(headerSize) + int64(maxFiles)*int64(slotSize)
}

// wrapIOErr classifies any I/O failure from the underlying [fsx.FS]/[fsx.File]
// as [ErrIO], per spec.md §4.A.
func wrapIOErr(op string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w: %w", op, ErrIO, err)
}

// createContainer creates a new, empty container file: header with
// nb_files=0 and max_files/resized_res as given, plus a zeroed metadata
// table of max_files slots (spec.md §4.E create).
func createContainer(fs fsx.FS, path string, maxFiles uint32, resizedRes [4]uint16) (*container, error) {
	if maxFiles == 0 {
		return nil, fmt.Errorf("max_files must be >= 1: %w", ErrMaxFiles)
	}

	f, err := fs.Create(path)
	if err != nil {
		return nil, wrapIOErr("create container", err)
	}

	c := &container{
		fs:   fs,
		path: path,
		file: f,
		header: Header{
			Name:       ContainerLabel,
			Version:    0,
			NbFiles:    0,
			MaxFiles:   maxFiles,
			ResizedRes: resizedRes,
		},
		slots: make([]Slot, maxFiles),
	}

	if err := c.writeHeader(); err != nil {
		_ = f.Close()
		return nil, err
	}

	for i := range c.slots {
		if err := c.writeSlot(i); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	return c, nil
}

// openContainer opens an existing container, reading the header and then
// every metadata slot into an owned, contiguous in-memory table.
func openContainer(fs fsx.FS, path string) (*container, error) {
	f, err := fs.OpenReadWrite(path)
	if err != nil {
		return nil, wrapIOErr("open container", err)
	}

	c := &container{fs: fs, path: path, file: f}

	headerBuf := make([]byte, headerSize)
	if _, err := readFullAt(f, headerBuf, 0); err != nil {
		_ = f.Close()
		return nil, wrapIOErr("read header", err)
	}

	c.header = decodeHeader(headerBuf)
	c.slots = make([]Slot, c.header.MaxFiles)

	for i := range c.slots {
		buf := make([]byte, slotSize)
		if _, err := readFullAt(f, buf, slotOffset(i)); err != nil {
			_ = f.Close()
			return nil, wrapIOErr("read slot", err)
		}

		c.slots[i] = decodeSlot(buf)
	}

	return c, nil
}

// close releases the in-memory table and closes the file.
func (c *container) close() error {
	c.slots = nil
	if err := c.file.Close(); err != nil {
		return wrapIOErr("close container", err)
	}

	return nil
}

func (c *container) writeHeader() error {
	_, err := c.file.WriteAt(encodeHeader(c.header), 0)
	return wrapIOErr("write header", err)
}

func (c *container) writeSlot(i int) error {
	_, err := c.file.WriteAt(encodeSlot(c.slots[i]), slotOffset(i))
	return wrapIOErr("write slot", err)
}

// appendPayload writes buf at the current end of file and returns the
// offset it was written at.
func (c *container) appendPayload(buf []byte) (offset uint64, err error) {
	info, err := c.file.Stat()
	if err != nil {
		return 0, wrapIOErr("stat container", err)
	}

	off := info.Size()

	if _, err := c.file.WriteAt(buf, off); err != nil {
		return 0, wrapIOErr("append payload", err)
	}

	return uint64(off), nil
}

// readPayload reads exactly size bytes starting at off.
func (c *container) readPayload(off uint64, size uint32) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := readFullAt(c.file, buf, int64(off)); err != nil {
		return nil, wrapIOErr("read payload", err)
	}

	return buf, nil
}

// readFullAt reads len(buf) bytes at off with a single ReadAt call. io.ReaderAt
// returns an error whenever it reads fewer bytes than requested, so no loop is
// needed; an io.EOF that accompanies a full read is ignored, and a short read
// is reported as io.ErrUnexpectedEOF.
func readFullAt(f fsx.File, buf []byte, off int64) (int, error) {
	n, err := f.ReadAt(buf, off)
	if err != nil && err != io.EOF {
		return n, err
	}

	if n < len(buf) {
		return n, io.ErrUnexpectedEOF
	}

	return n, nil
}
