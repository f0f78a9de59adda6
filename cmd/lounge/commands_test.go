package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pulinafi/lounge-desktop/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T) (path, dataDir string) {
	t.Helper()
	dir := t.TempDir()
	dataDir = filepath.Join(dir, "data")
	path = filepath.Join(dir, "config.toml")
	body := "data_dir = \"" + filepath.ToSlash(dataDir) + "\"\n\n[app]\nurl = \"https://lounge.example.org\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path, dataDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestScriptCommand(t *testing.T) {
	path, _ := writeTestConfig(t)
	out, err := execute(t, "script", "--config", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "(function () {"))
	assert.Contains(t, out, `"https://lounge.example.org"`)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "The Lounge")
}

func TestGeometryReset(t *testing.T) {
	path, dataDir := writeTestConfig(t)
	store := geometry.NewStore(filepath.Join(dataDir, "window-state.json"))
	require.NoError(t, store.Save(geometry.At(800, 600, 1, 2)))

	_, err := execute(t, "geometry", "reset", "--config", path)
	require.NoError(t, err)
	assert.True(t, store.Load().Equal(geometry.Default()))
}

func TestConfigErrorIsReturned(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[app]\nurl = \"ftp://nope\"\n"), 0o644))

	_, err := execute(t, "script", "--config", path)
	require.Error(t, err)
}
