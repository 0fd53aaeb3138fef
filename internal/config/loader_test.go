package config

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockFileSystem implements FileSystem for testing.
type MockFileSystem struct {
	HomeDir     string
	HomeDirErr  error
	Files       map[string][]byte
	ReadFileErr error
}

func (m *MockFileSystem) UserHomeDir() (string, error) {
	return m.HomeDir, m.HomeDirErr
}

func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	if m.ReadFileErr != nil {
		return nil, m.ReadFileErr
	}
	data, ok := m.Files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func TestLoad_NoConfigFile_ReturnsDefaults(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, "moonshotai/kimi-k2-instruct", cfg.Models.DefaultModel)
	assert.Equal(t, 10, cfg.Conversation.MaxReasoningSteps)
	assert.Equal(t, 0.7, cfg.Conversation.WarningThreshold)
	assert.Equal(t, 30, cfg.Shell.TimeoutSeconds)
	assert.False(t, cfg.Fuzzy.Enabled)
}

func TestLoad_PartialOverride_MergesWithDefaults(t *testing.T) {
	configJSON := `{
		"conversation": {"max_reasoning_steps": 25},
		"fuzzy_matching": {"enabled_by_default": true, "min_edit_score": 90}
	}`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			"/home/user/.config/arlo/config.json": []byte(configJSON),
		},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Conversation.MaxReasoningSteps)
	assert.True(t, cfg.Fuzzy.Enabled)
	assert.Equal(t, 90, cfg.Fuzzy.MinEditScore)
	// Untouched keys keep their defaults
	assert.Equal(t, 0.85, cfg.Conversation.CriticalThreshold)
	assert.Equal(t, 80, cfg.Fuzzy.MinFileScore)
}

func TestLoad_MalformedJSON_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			"/home/user/.config/arlo/config.json": []byte(`{not valid json`),
		},
	}
	loader := NewLoaderWithFS(fs)

	_, err := loader.Load()
	require.Error(t, err)
}

func TestLoad_InvalidValues_ReturnsValidationError(t *testing.T) {
	configJSON := `{"conversation": {"max_reasoning_steps": 0}}`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			"/home/user/.config/arlo/config.json": []byte(configJSON),
		},
	}
	loader := NewLoaderWithFS(fs)

	_, err := loader.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_reasoning_steps")
}

func TestLoad_HomeDirError_ReturnsDefaults(t *testing.T) {
	fs := &MockFileSystem{HomeDirErr: errors.New("no home")}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Models.DefaultModel, cfg.Models.DefaultModel)
}

func TestContextWindow_UnknownModelUsesDefault(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 131072, cfg.ContextWindow("moonshotai/kimi-k2-instruct"))
	assert.Equal(t, DefaultContextWindow, cfg.ContextWindow("some-future-model"))
}
