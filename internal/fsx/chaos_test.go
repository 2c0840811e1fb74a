package fsx_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epfl-sysnet/imgfs/internal/fsx"
)

func Test_Chaos_ReadAtFailRate_1_Always_Injects_ChaosError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "container.bin")
	real := fsx.NewReal()

	f, err := real.Create(path)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte("hello"), 0)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	chaos := fsx.NewChaos(real, 1, fsx.ChaosConfig{ReadAtFailRate: 1})

	cf, err := chaos.Open(path)
	require.NoError(t, err)

	defer func() { _ = cf.Close() }()

	buf := make([]byte, 5)
	_, err = cf.ReadAt(buf, 0)
	require.Error(t, err)
	require.True(t, fsx.IsChaosErr(err))
	require.Equal(t, int64(1), chaos.Stats().ReadAtFails)
}

func Test_Chaos_SetMode_NoOp_Disables_Injection(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "container.bin")
	real := fsx.NewReal()

	f, err := real.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	chaos := fsx.NewChaos(real, 1, fsx.ChaosConfig{OpenFailRate: 1})
	chaos.SetMode(fsx.ChaosModeNoOp)

	cf, err := chaos.Open(path)
	require.NoError(t, err)
	require.NoError(t, cf.Close())
	require.Equal(t, int64(0), chaos.Stats().OpenFails)
}

func Test_Chaos_PartialWriteAtRate_1_Writes_Prefix_And_Fails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "container.bin")
	real := fsx.NewReal()

	f, err := real.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	chaos := fsx.NewChaos(real, 7, fsx.ChaosConfig{PartialWriteAtRate: 1})

	cf, err := chaos.OpenReadWrite(path)
	require.NoError(t, err)

	defer func() { _ = cf.Close() }()

	n, err := cf.WriteAt([]byte("hello world"), 0)
	require.Error(t, err)
	require.True(t, fsx.IsChaosErr(err))
	require.Less(t, n, len("hello world"))
	require.Equal(t, int64(1), chaos.Stats().PartialWrites)
}
