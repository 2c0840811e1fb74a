package fsx_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epfl-sysnet/imgfs/internal/fsx"
)

func Test_Real_Create_Then_Open_RoundTrips_Content(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "container.bin")
	real := fsx.NewReal()

	f, err := real.Create(path)
	require.NoError(t, err)

	_, err = f.WriteAt([]byte("hello"), 0)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	exists, err := real.Exists(path)
	require.NoError(t, err)
	require.True(t, exists)

	f, err = real.Open(path)
	require.NoError(t, err)

	defer func() { _ = f.Close() }()

	buf := make([]byte, 5)
	_, err = f.ReadAt(buf, 0)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf))
}

func Test_Real_Exists_Reports_False_For_Missing_Path(t *testing.T) {
	t.Parallel()

	real := fsx.NewReal()

	exists, err := real.Exists(filepath.Join(t.TempDir(), "nope.bin"))
	require.NoError(t, err)
	require.False(t, exists)
}

func Test_Real_OpenReadWrite_Allows_Mutation(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "container.bin")
	real := fsx.NewReal()

	f, err := real.Create(path)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte("aaaa"), 0)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = real.OpenReadWrite(path)
	require.NoError(t, err)

	_, err = f.WriteAt([]byte("b"), 1)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = real.Open(path)
	require.NoError(t, err)

	defer func() { _ = f.Close() }()

	buf := make([]byte, 4)
	_, err = f.ReadAt(buf, 0)
	require.NoError(t, err)
	require.Equal(t, "abaa", string(buf))
}
