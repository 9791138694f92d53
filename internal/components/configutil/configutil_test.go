package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string         `json:"name"`
	Port    int            `json:"port"`
	Options map[string]int `json:"options"`
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "app.json5")

	_, err := ReadConfig[testConfig](name)
	require.ErrorIs(t, err, os.ErrNotExist)

	err = os.WriteFile(name, []byte(`{
		// comments are allowed
		name: "default",
		port: 8000,
		options: { a: 1 },
	}`), 0666)
	require.NoError(t, err)

	config, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "default", config.Name)
	require.Equal(t, 8000, config.Port)

	err = os.WriteFile(filepath.Join(dir, "app.local.json5"), []byte(`{ port: 9000, options: { b: 2 } }`), 0666)
	require.NoError(t, err)

	config, err = ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "default", config.Name)
	require.Equal(t, 9000, config.Port)
	require.Equal(t, map[string]int{"a": 1, "b": 2}, config.Options)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "broken.json5")
	require.NoError(t, os.WriteFile(name, []byte(`{ name: `), 0666))

	_, err := ReadConfig[testConfig](name)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestLocalName(t *testing.T) {
	require.Equal(t, filepath.Join("a", "b.local.json5"), localName(filepath.Join("a", "b.json5")))
	require.Equal(t, "noext.local", localName("noext"))
}

func TestOverlay(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "app.json5")

	config := testConfig{Name: "builtin", Port: 1}
	found, err := Overlay(name, &config)
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, testConfig{Name: "builtin", Port: 1}, config)

	require.NoError(t, os.WriteFile(name, []byte(`{ port: 8000 }`), 0666))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.local.json5"), []byte(`{ port: 0 }`), 0666))

	found, err = Overlay(name, &config)
	require.NoError(t, err)
	require.True(t, found)
	// an explicit zero value in the local file still wins
	require.Equal(t, testConfig{Name: "builtin", Port: 0}, config)
}
