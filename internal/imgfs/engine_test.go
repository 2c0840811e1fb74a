package imgfs

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epfl-sysnet/imgfs/internal/fsx"
)

func newTestJPEG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x + y), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	return buf.Bytes()
}

func newTestEngine(t *testing.T, opts CreateOptions) (*Engine, fsx.FS, string) {
	t.Helper()

	fs := fsx.NewReal()
	path := filepath.Join(t.TempDir(), "container.imgfs")

	e, err := Create(fs, path, opts)
	require.NoError(t, err)

	t.Cleanup(func() { _ = e.Close() })

	return e, fs, path
}

func Test_Create_Applies_Defaults_For_Zero_Options(t *testing.T) {
	t.Parallel()

	e, _, _ := newTestEngine(t, CreateOptions{})

	h := e.Header()
	require.Equal(t, uint32(DefaultMaxFiles), h.MaxFiles)
	require.Equal(t, ContainerLabel, h.Name)
	require.Equal(t, [4]uint16{DefaultThumbW, DefaultThumbH, DefaultSmallW, DefaultSmallH}, h.ResizedRes)
}

func Test_Create_Rejects_Resolution_Out_Of_Range(t *testing.T) {
	t.Parallel()

	fs := fsx.NewReal()
	path := filepath.Join(t.TempDir(), "container.imgfs")

	_, err := Create(fs, path, CreateOptions{ThumbW: MaxThumbW + 1, ThumbH: 10})
	require.ErrorIs(t, err, ErrResolutions)
}

func Test_Insert_Then_Read_Orig_RoundTrips_Bytes(t *testing.T) {
	t.Parallel()

	e, _, _ := newTestEngine(t, CreateOptions{MaxFiles: 4})

	orig := newTestJPEG(t, 100, 50)
	require.NoError(t, e.Insert(orig, "pic1"))

	got, err := e.Read("pic1", OrigRes)
	require.NoError(t, err)
	require.Equal(t, orig, got)
}

func Test_Insert_Increments_Version_And_NbFiles(t *testing.T) {
	t.Parallel()

	e, _, _ := newTestEngine(t, CreateOptions{MaxFiles: 4})

	require.Equal(t, uint32(0), e.Header().Version)

	require.NoError(t, e.Insert(newTestJPEG(t, 20, 20), "pic1"))

	h := e.Header()
	require.Equal(t, uint32(1), h.Version)
	require.Equal(t, uint32(1), h.NbFiles)
}

func Test_Insert_Beyond_MaxFiles_Returns_ErrImgfsFull(t *testing.T) {
	t.Parallel()

	e, _, _ := newTestEngine(t, CreateOptions{MaxFiles: 1})

	require.NoError(t, e.Insert(newTestJPEG(t, 20, 20), "pic1"))

	err := e.Insert(newTestJPEG(t, 20, 20), "pic2")
	require.ErrorIs(t, err, ErrImgfsFull)
}

func Test_Insert_Duplicate_ImgID_Returns_ErrDuplicateID_And_Rolls_Back(t *testing.T) {
	t.Parallel()

	e, _, _ := newTestEngine(t, CreateOptions{MaxFiles: 4})

	require.NoError(t, e.Insert(newTestJPEG(t, 20, 20), "pic1"))

	before := e.Header()

	err := e.Insert(newTestJPEG(t, 30, 30), "pic1")
	require.ErrorIs(t, err, ErrDuplicateID)

	after := e.Header()
	require.Equal(t, before.NbFiles, after.NbFiles)
	require.Equal(t, before.Version, after.Version)
}

func Test_Insert_Same_Content_Different_ID_Dedups_Payload(t *testing.T) {
	t.Parallel()

	e, _, path := newTestEngine(t, CreateOptions{MaxFiles: 4})

	img := newTestJPEG(t, 40, 40)

	require.NoError(t, e.Insert(img, "pic1"))
	require.NoError(t, e.Close())

	fs := fsx.NewReal()

	e2, err := Open(fs, path)
	require.NoError(t, err)
	defer e2.Close()

	sizeBefore := containerSize(t, fs, path)

	require.NoError(t, e2.Insert(img, "pic2"))

	sizeAfter := containerSize(t, fs, path)

	// No payload should have been appended for pic2, since the content
	// already exists under pic1.
	require.Equal(t, sizeBefore, sizeAfter)

	got1, err := e2.Read("pic1", OrigRes)
	require.NoError(t, err)

	got2, err := e2.Read("pic2", OrigRes)
	require.NoError(t, err)

	require.Equal(t, got1, got2)
}

func containerSize(t *testing.T, fs fsx.FS, path string) int64 {
	t.Helper()

	f, err := fs.Open(path)
	require.NoError(t, err)
	defer f.Close()

	info, err := f.Stat()
	require.NoError(t, err)

	return info.Size()
}

func Test_Read_Unknown_ImgID_Returns_ErrImageNotFound(t *testing.T) {
	t.Parallel()

	e, _, _ := newTestEngine(t, CreateOptions{MaxFiles: 4})

	_, err := e.Read("nope", OrigRes)
	require.ErrorIs(t, err, ErrImageNotFound)
}

func Test_Read_Thumb_Lazily_Resizes_And_Caches(t *testing.T) {
	t.Parallel()

	e, _, _ := newTestEngine(t, CreateOptions{MaxFiles: 4, ThumbW: 32, ThumbH: 32})

	require.NoError(t, e.Insert(newTestJPEG(t, 200, 100), "pic1"))

	thumb, err := e.Read("pic1", ThumbRes)
	require.NoError(t, err)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	require.Equal(t, 32, cfg.Width)

	slots, err := e.Slots()
	require.NoError(t, err)
	require.NotZero(t, slots[0].Size[ThumbRes])

	// header.version must not have moved: a resize is not a logical mutation.
	require.Equal(t, uint32(1), e.Header().Version)

	// Reading again must not re-resize (offset/size unchanged).
	before := slots[0]

	_, err = e.Read("pic1", ThumbRes)
	require.NoError(t, err)

	slots, err = e.Slots()
	require.NoError(t, err)
	require.Equal(t, before.Offset[ThumbRes], slots[0].Offset[ThumbRes])
}

func Test_Delete_Then_Read_Returns_ErrImageNotFound(t *testing.T) {
	t.Parallel()

	e, _, _ := newTestEngine(t, CreateOptions{MaxFiles: 4})

	require.NoError(t, e.Insert(newTestJPEG(t, 20, 20), "pic1"))
	require.NoError(t, e.Delete("pic1"))

	_, err := e.Read("pic1", OrigRes)
	require.ErrorIs(t, err, ErrImageNotFound)

	h := e.Header()
	require.Equal(t, uint32(0), h.NbFiles)
	require.Equal(t, uint32(2), h.Version)
}

func Test_Delete_Frees_Slot_For_Reuse(t *testing.T) {
	t.Parallel()

	e, _, _ := newTestEngine(t, CreateOptions{MaxFiles: 1})

	require.NoError(t, e.Insert(newTestJPEG(t, 20, 20), "pic1"))
	require.NoError(t, e.Delete("pic1"))
	require.NoError(t, e.Insert(newTestJPEG(t, 20, 20), "pic2"))

	_, err := e.Read("pic2", OrigRes)
	require.NoError(t, err)
}

func Test_Delete_Unknown_ImgID_Returns_ErrImageNotFound(t *testing.T) {
	t.Parallel()

	e, _, _ := newTestEngine(t, CreateOptions{MaxFiles: 4})

	err := e.Delete("nope")
	require.ErrorIs(t, err, ErrImageNotFound)
}

func Test_Insert_WriteAt_Failure_Surfaces_As_ErrIO(t *testing.T) {
	t.Parallel()

	real := fsx.NewReal()
	path := filepath.Join(t.TempDir(), "container.imgfs")

	e, err := Create(real, path, CreateOptions{MaxFiles: 4})
	require.NoError(t, err)
	require.NoError(t, e.Close())

	chaos := fsx.NewChaos(real, 42, fsx.ChaosConfig{WriteAtFailRate: 1})

	e2, err := Open(chaos, path)
	require.NoError(t, err)
	defer e2.Close()

	err = e2.Insert(newTestJPEG(t, 20, 20), "pic1")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrIO)
	require.Equal(t, int64(1), chaos.Stats().WriteAtFails)
}

func Test_Open_Reopens_Existing_Container_With_Its_Metadata(t *testing.T) {
	t.Parallel()

	e, fs, path := newTestEngine(t, CreateOptions{MaxFiles: 4})

	require.NoError(t, e.Insert(newTestJPEG(t, 20, 20), "pic1"))
	require.NoError(t, e.Close())

	e2, err := Open(fs, path)
	require.NoError(t, err)
	defer e2.Close()

	require.Equal(t, uint32(1), e2.Header().NbFiles)

	_, err = e2.Read("pic1", OrigRes)
	require.NoError(t, err)
}

func Test_Insert_Decode_Failure_Rolls_Back_In_Memory_State(t *testing.T) {
	t.Parallel()

	e, _, _ := newTestEngine(t, CreateOptions{MaxFiles: 4})

	before := e.Header()

	err := e.Insert([]byte("not a jpeg"), "pic1")
	require.ErrorIs(t, err, ErrImgLib)

	after := e.Header()
	require.Equal(t, before.NbFiles, after.NbFiles)
	require.Equal(t, before.Version, after.Version)

	slots, err := e.Slots()
	require.NoError(t, err)
	require.False(t, slots[0].IsValid)
}

func Test_List_JSON_Lists_Valid_ImgIDs_In_Slot_Order(t *testing.T) {
	t.Parallel()

	e, _, _ := newTestEngine(t, CreateOptions{MaxFiles: 4})

	require.NoError(t, e.Insert(newTestJPEG(t, 10, 10), "pic1"))
	require.NoError(t, e.Insert(newTestJPEG(t, 12, 12), "pic2"))

	out, err := e.List(ListJSON)
	require.NoError(t, err)
	require.JSONEq(t, `{"Images":["pic1","pic2"]}`, out)
}

func Test_List_Stdout_Reports_Empty_Container(t *testing.T) {
	t.Parallel()

	e, _, _ := newTestEngine(t, CreateOptions{MaxFiles: 4})

	out, err := e.List(ListStdout)
	require.NoError(t, err)
	require.Contains(t, out, "empty imgFS")
}
