package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tem/calculator"
	"tem/store"
)

const layoutYAML = `units: m
domain: {width: 2, height: 4}
layers:
  - material: Ceramic
    rect: {x0: 0, y0: 2, xf: 2, yf: 0}
    nodes: 5
  - material: Copper
    rect: {x0: 0, y0: 4, xf: 2, yf: 2}
    nodes: 5
`

const configIni = `[solver]
Workers = 2

[boundary.south]
Kind = temperature
T = 300

[boundary.north]
Kind = temperature
T = 400
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSolve(t *testing.T) {
	layout := writeTemp(t, "layout.yaml", layoutYAML)
	config := writeTemp(t, "config.ini", configIni)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "nodes.csv")
	pngPath := filepath.Join(dir, "field.png")

	out, err := execute(t, "solve", "--config", config, "--layout", layout,
		"--csv", csvPath, "--png", pngPath, "--tol", "1e-6", "--log-level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "nodes      50 in 2 layers")
	assert.Contains(t, out, "converged true")
	assert.Contains(t, out, "min 300.000 K")
	assert.Contains(t, out, "max 400.000 K")

	csv, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	assert.Len(t, lines, 51)
	assert.Equal(t, "Node ID,XPOS,YPOS,Material,Temperature", lines[0])

	png, err := os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestSolve_NotConverged(t *testing.T) {
	layout := writeTemp(t, "layout.yaml", layoutYAML)
	csvPath := filepath.Join(t.TempDir(), "nodes.csv")

	out, err := execute(t, "solve", "--layout", layout, "--max-iter", "1", "--tol", "1e-12", "--csv", csvPath)
	assert.ErrorIs(t, err, calculator.ErrNotConverged)
	assert.Contains(t, out, "converged false")
	// the partial field is still exported
	assert.FileExists(t, csvPath)
}

func TestSolve_BadConfig(t *testing.T) {
	_, err := execute(t, "solve", "--config", filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)

	_, err = execute(t, "solve", "--log-level", "chatty")
	assert.ErrorIs(t, err, calculator.ErrConfig)
}

func TestLayers(t *testing.T) {
	out, err := execute(t, "layers")
	require.NoError(t, err)
	assert.Contains(t, out, "58 layers")
	assert.Contains(t, out, "BiTe")

	layout := writeTemp(t, "layout.yaml", layoutYAML)
	out, err = execute(t, "layers", "--layout", layout)
	require.NoError(t, err)
	assert.Contains(t, out, "2 layers, 50 nodes before deduplication, domain 2x4 m")
}

func TestOpenStore(t *testing.T) {
	cmd := NewRootCmd()
	cfg := calculator.DefaultConfig()
	_, logger, err := setup(cmd)
	require.NoError(t, err)

	st, err := openStore(context.Background(), cfg, logger)
	require.NoError(t, err)
	assert.IsType(t, &store.Memory{}, st)

	mr := miniredis.RunT(t)
	cfg.StoreBackend = "redis"
	cfg.RedisAddr = mr.Addr()
	st, err = openStore(context.Background(), cfg, logger)
	require.NoError(t, err)
	assert.IsType(t, &store.Redis{}, st)
	require.NoError(t, st.Close())

	cfg.StoreBackend = "etcd"
	_, err = openStore(context.Background(), cfg, logger)
	assert.ErrorIs(t, err, calculator.ErrConfig)
}
