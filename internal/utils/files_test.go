package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFileCreatesDirAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "corr.csv")

	require.NoError(t, SafeWriteFile(path, []byte("a\n")))
	require.NoError(t, SafeWriteFile(path, []byte("b\n")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "b\n", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}
