package imgfs

import "encoding/binary"

// Resolution identifies one of the three pre-declared resolutions a slot may
// carry a payload for. Fixed order per spec.md §3: {THUMB_RES, SMALL_RES, ORIG_RES}.
type Resolution int

const (
	ThumbRes Resolution = iota
	SmallRes
	OrigRes
	NbRes // number of resolutions; not a valid Resolution value itself
)

// On-disk size constants. The layout is bit-exact little-endian with
// explicit field widths (spec.md §6) so containers are interchangeable
// between implementations.
const (
	nameSize    = 32  // fixed capacity, NUL-terminated ASCII
	maxImgIDLen = 127 // MAX_IMG_ID
	imgIDSize   = maxImgIDLen + 1
	shaSize     = 32

	// headerSize is the fixed byte size of the on-disk header, §6.
	// name(32) + version(4) + nb_files(4) + max_files(4) + resized_res(4*u16=8) = 52,
	// padded to an 8-byte boundary with 12 reserved bytes.
	headerSize = 64

	// slotSize is the fixed byte size of one on-disk metadata slot, §6.
	// img_id(128) + sha(32) + orig_res(2*u32=8) + size(3*u32=12) + offset(3*u64=24)
	// + is_valid(u16=2) = 206, padded to 208 with 2 reserved bytes.
	slotSize = 208
)

// ContainerLabel is the header.name value written by Create, matching the
// documented container label in spec.md §4.E.
const ContainerLabel = "EPFL ImgFS 2024"

// header field offsets, bytes from the start of the file.
const (
	offName       = 0
	offVersion    = offName + nameSize
	offNbFiles    = offVersion + 4
	offMaxFiles   = offNbFiles + 4
	offResizedRes = offMaxFiles + 4 // 4 x uint16
)

// slot field offsets, bytes from the start of the slot.
const (
	slotOffImgID    = 0
	slotOffSHA      = slotOffImgID + imgIDSize
	slotOffOrigRes  = slotOffSHA + shaSize   // 2 x uint32
	slotOffSize     = slotOffOrigRes + 8     // 3 x uint32
	slotOffOffset   = slotOffSize + 12       // 3 x uint64
	slotOffIsValid  = slotOffOffset + 24     // uint16
)

// validity flags for Slot.IsValid.
const (
	slotEmpty    uint16 = 0
	slotNonEmpty uint16 = 1
)

// Header is the in-memory mirror of the fixed on-disk header (spec.md §3).
type Header struct {
	Name    string // <= nameSize-1 bytes
	Version uint32
	NbFiles uint32

	// MaxFiles is set at create time and immutable afterwards.
	MaxFiles uint32

	// ResizedRes holds {thumb_w, thumb_h, small_w, small_h}, immutable after create.
	ResizedRes [4]uint16
}

// ThumbSize returns the configured thumbnail target (width, height).
func (h Header) ThumbSize() (w, height uint16) { return h.ResizedRes[0], h.ResizedRes[1] }

// SmallSize returns the configured small-resolution target (width, height).
func (h Header) SmallSize() (w, height uint16) { return h.ResizedRes[2], h.ResizedRes[3] }

// targetWidth returns the longest-side target width for resolution r, or 0
// for r == OrigRes (which has no derived target).
func (h Header) targetWidth(r Resolution) uint16 {
	switch r {
	case ThumbRes:
		return h.ResizedRes[0]
	case SmallRes:
		return h.ResizedRes[2]
	default:
		return 0
	}
}

func encodeHeader(h Header) []byte {
	buf := make([]byte, headerSize)

	copy(buf[offName:offName+nameSize], h.Name)
	binary.LittleEndian.PutUint32(buf[offVersion:], h.Version)
	binary.LittleEndian.PutUint32(buf[offNbFiles:], h.NbFiles)
	binary.LittleEndian.PutUint32(buf[offMaxFiles:], h.MaxFiles)

	for i, v := range h.ResizedRes {
		binary.LittleEndian.PutUint16(buf[offResizedRes+2*i:], v)
	}

	return buf
}

func decodeHeader(buf []byte) Header {
	var h Header

	h.Name = cString(buf[offName : offName+nameSize])
	h.Version = binary.LittleEndian.Uint32(buf[offVersion:])
	h.NbFiles = binary.LittleEndian.Uint32(buf[offNbFiles:])
	h.MaxFiles = binary.LittleEndian.Uint32(buf[offMaxFiles:])

	for i := range h.ResizedRes {
		h.ResizedRes[i] = binary.LittleEndian.Uint16(buf[offResizedRes+2*i:])
	}

	return h
}

// Slot is the in-memory mirror of one fixed-size metadata record (spec.md §3).
type Slot struct {
	ImgID   string // <= maxImgIDLen bytes
	SHA     [shaSize]byte
	IsValid bool

	// OrigW, OrigH are the original image dimensions in pixels.
	OrigW, OrigH uint32

	// Offset and Size are indexed by Resolution. Size[r] == 0 means resolution
	// r is absent for this slot.
	Offset [NbRes]uint64
	Size   [NbRes]uint32
}

// zeroSlot returns a slot with all fields cleared, matching the zeroed
// on-disk representation written by Create and by Insert before it populates
// a slot.
func zeroSlot() Slot { return Slot{} }

func encodeSlot(s Slot) []byte {
	buf := make([]byte, slotSize)

	copy(buf[slotOffImgID:slotOffImgID+imgIDSize], s.ImgID)
	copy(buf[slotOffSHA:slotOffSHA+shaSize], s.SHA[:])

	binary.LittleEndian.PutUint32(buf[slotOffOrigRes:], s.OrigW)
	binary.LittleEndian.PutUint32(buf[slotOffOrigRes+4:], s.OrigH)

	for r := 0; r < int(NbRes); r++ {
		binary.LittleEndian.PutUint32(buf[slotOffSize+4*r:], s.Size[r])
	}

	for r := 0; r < int(NbRes); r++ {
		binary.LittleEndian.PutUint64(buf[slotOffOffset+8*r:], s.Offset[r])
	}

	valid := slotEmpty
	if s.IsValid {
		valid = slotNonEmpty
	}

	binary.LittleEndian.PutUint16(buf[slotOffIsValid:], valid)

	return buf
}

func decodeSlot(buf []byte) Slot {
	var s Slot

	s.ImgID = cString(buf[slotOffImgID : slotOffImgID+imgIDSize])
	copy(s.SHA[:], buf[slotOffSHA:slotOffSHA+shaSize])

	s.OrigW = binary.LittleEndian.Uint32(buf[slotOffOrigRes:])
	s.OrigH = binary.LittleEndian.Uint32(buf[slotOffOrigRes+4:])

	for r := 0; r < int(NbRes); r++ {
		s.Size[r] = binary.LittleEndian.Uint32(buf[slotOffSize+4*r:])
	}

	for r := 0; r < int(NbRes); r++ {
		s.Offset[r] = binary.LittleEndian.Uint64(buf[slotOffOffset+8*r:])
	}

	s.IsValid = binary.LittleEndian.Uint16(buf[slotOffIsValid:]) == slotNonEmpty

	return s
}

// cString trims a fixed-width NUL-padded byte buffer to its string content.
func cString(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}

	return string(buf)
}

// truncateImgID truncates and the caller NUL-terminates id at imgIDSize-1
// bytes, matching spec.md §4.E step 3.
func truncateImgID(id string) string {
	if len(id) > maxImgIDLen {
		return id[:maxImgIDLen]
	}

	return id
}
