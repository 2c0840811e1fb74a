package imgfsd_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/epfl-sysnet/imgfs/internal/imgfsd"
)

func Test_LoadConfig_Missing_Path_Returns_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := imgfsd.LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, imgfsd.DefaultConfig(), cfg)
}

func Test_LoadConfig_Overlays_YAML_Onto_Defaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "imgfsd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \":9090\"\n"), 0o644))

	cfg, err := imgfsd.LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Listen)
	require.Equal(t, imgfsd.DefaultConfig().Container, cfg.Container)
}

func Test_LoadConfig_Nonexistent_Explicit_Path_Is_Not_Fatal(t *testing.T) {
	t.Parallel()

	cfg, err := imgfsd.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, imgfsd.DefaultConfig(), cfg)
}
