package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "cowork-engine", s.EngineBinary)
	assert.Equal(t, "dark", s.Theme)
	assert.False(t, s.OnboardingComplete)
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	original := &Settings{
		EngineBinary:       "/usr/local/bin/engine",
		EngineArgs:         []string{"--verbose"},
		WorkingDirectory:   "/work",
		Model:              "local-7b",
		Theme:              "light",
		OnboardingComplete: true,
	}
	require.NoError(t, Save(path, original))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestSave_AtomicLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, Save(path, Default()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "settings.yaml", entries[0].Name())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("::: not yaml"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: light\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "light", s.Theme)
	assert.Equal(t, "cowork-engine", s.EngineBinary, "unset keys keep defaults")
}
