package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"battlesol/internal/commitment"
	"battlesol/internal/config"
	"battlesol/internal/types"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestCommitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"shipId":1,"cells":[{"row":0,"col":0},{"row":0,"col":1}]}]`), 0o644))

	out, err := run(t, "commit", path, "42")
	require.NoError(t, err)

	want, err := commitment.Commit(commitment.Fleet{
		{ShipID: 1, Cells: []commitment.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}}},
	}, 42)
	require.NoError(t, err)
	require.Equal(t, want.String(), out)

	_, err = run(t, "commit", path, "nope")
	require.ErrorContains(t, err, "invalid nonce")
}

func TestAddressCmd(t *testing.T) {
	out, err := run(t, "address", "game-vault", "3")
	require.NoError(t, err)
	require.Equal(t, types.GameVaultAddress(3), out)

	out, err = run(t, "address", "presale")
	require.NoError(t, err)
	require.Equal(t, types.PresaleAddress(), out)

	_, err = run(t, "address", "game")
	require.ErrorIs(t, err, types.ErrInvalidRequest)
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.Equal(t, Version, out)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogFormat = "json"
	logger, err := newLogger(&buf, cfg)
	require.NoError(t, err)
	logger.Info("hello", "k", "v")
	require.Contains(t, buf.String(), `"message":"hello"`)
	require.Contains(t, buf.String(), `"app":"battlesol"`)

	buf.Reset()
	cfg.LogLevel = "error"
	logger, err = newLogger(&buf, cfg)
	require.NoError(t, err)
	logger.Info("quiet")
	require.Empty(t, buf.String())
}
