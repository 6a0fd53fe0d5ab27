package configutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl string `json:"base_url"`
	Timeout int    `json:"timeout_seconds"`
	Verbose bool   `json:"verbose"`
}

func TestSplitExt(t *testing.T) {
	name, ext := splitExt("dogfinder.json5")
	require.Equal(t, "dogfinder", name)
	require.Equal(t, "json5", ext)

	name, ext = splitExt("noext")
	require.Equal(t, "noext", name)
	require.Equal(t, "", ext)
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "dogfinder.json5"), []byte(`{
		// json5 allows comments
		base_url: "https://example.com",
		timeout_seconds: 10,
	}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "dogfinder.local.json5"), []byte(`{
		timeout_seconds: 3,
	}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "dogfinder.json5"))
	require.NoError(t, err)
	require.Equal(t, testConfig{BaseUrl: "https://example.com", Timeout: 3}, cfg)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "missing.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestReadConfigWithDefaults(t *testing.T) {
	defaults := testConfig{BaseUrl: "https://default", Timeout: 30}

	cfg, err := ReadConfigWithDefaults(filepath.Join(t.TempDir(), "missing.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, defaults, cfg)

	dir := t.TempDir()
	err = os.WriteFile(filepath.Join(dir, "c.json5"), []byte(`{verbose: true}`), 0600)
	require.NoError(t, err)
	cfg, err = ReadConfigWithDefaults(filepath.Join(dir, "c.json5"), defaults)
	require.NoError(t, err)
	require.Equal(t, testConfig{BaseUrl: "https://default", Timeout: 30, Verbose: true}, cfg)
}

func TestResolvePath(t *testing.T) {
	path, err := ResolvePath("dogfinder", "relative/file.db")
	require.NoError(t, err)
	require.Equal(t, "relative/file.db", path)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	path, err = ResolvePath("dogfinder", "<config_dir>/dogfinder.db")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, filepath.Join("dogfinder", "dogfinder.db")))
}
