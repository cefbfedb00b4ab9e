package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), c)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VDJSTAT_DEFAULT_INDEX", "Clonality")
	t.Setenv("VDJSTAT_PREVIEW_ROWS", "7")
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Clonality", c.DefaultIndex)
	assert.Equal(t, 7, c.PreviewRows)
}

func TestSaveThenLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := Defaults()
	c.Delimiter = "tab"
	c.ExcludeValue = "Public"
	require.NoError(t, Save(c, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	d, err := got.DelimiterRune()
	require.NoError(t, err)
	assert.Equal(t, '\t', d)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDelimiterRune(t *testing.T) {
	c := Defaults()
	d, err := c.DelimiterRune()
	require.NoError(t, err)
	assert.Equal(t, rune(0), d)

	c.Delimiter = ";"
	d, err = c.DelimiterRune()
	require.NoError(t, err)
	assert.Equal(t, ';', d)

	c.Delimiter = "|"
	_, err = c.DelimiterRune()
	assert.Error(t, err)
}
