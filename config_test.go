package telango

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_JSONRoundtrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.json")

	config := &Config{
		Token:                 "42:TEST",
		PollTimeout:           25,
		WebhookURL:            "https://example.org/hook",
		WebhookListen:         ":8443",
		UpdateQueueSize:       64,
		ArbitraryCallbackData: true,
		CallbackCacheSize:     256,
		Debug:                 true,
	}

	// Save and load the configuration
	assert.NoError(t, SaveConfig(filename, config))
	loaded, err := LoadConfig(filename)
	assert.NoError(t, err)

	// Assert that every field survived the roundtrip
	assert.Equal(t, config, loaded)
}

func TestConfig_YAMLRoundtrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "config.yaml")

	config := &Config{
		Token:       "42:TEST",
		Proxy:       "127.0.0.1:1080",
		PollTimeout: 25,
	}

	// Save and load the configuration
	assert.NoError(t, SaveConfig(filename, config))
	loaded, err := LoadConfig(filename)
	assert.NoError(t, err)

	// Assert that the file is YAML, not JSON
	data, err := os.ReadFile(filename)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "token:")

	assert.Equal(t, config, loaded)
}

func TestConfig_LoadFailures(t *testing.T) {
	// Assert that a missing file is reported
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)

	// Assert that an undecodable file is reported
	filename := filepath.Join(t.TempDir(), "broken.json")
	assert.NoError(t, os.WriteFile(filename, []byte("not json"), 0644))
	_, err = LoadConfig(filename)
	assert.Error(t, err)
}
