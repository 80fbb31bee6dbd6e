package telango

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Config represents a configuration object.
type Config struct {
	Token  string `json:"token" yaml:"token"`   // Bot token obtained from BotFather.
	APIURL string `json:"apiurl" yaml:"apiurl"` // Bot API server, defaults to the hosted one.
	Proxy  string `json:"proxy" yaml:"proxy"`   // SOCKS5 proxy address, empty for a direct connection.

	PollTimeout   int    `json:"polltimeout" yaml:"polltimeout"`     // Long-poll window in seconds.
	WebhookURL    string `json:"webhookurl" yaml:"webhookurl"`       // Public webhook URL, empty enables polling.
	WebhookListen string `json:"webhooklisten" yaml:"webhooklisten"` // Address the webhook server listens on.
	WebhookPath   string `json:"webhookpath" yaml:"webhookpath"`     // Path of the webhook route, defaults to the token.

	UpdateQueueSize       int  `json:"updatequeuesize" yaml:"updatequeuesize"`             // Capacity of the update queue.
	ArbitraryCallbackData bool `json:"arbitrarycallbackdata" yaml:"arbitrarycallbackdata"` // Keep arbitrary callback data in a cache.
	CallbackCacheSize     int  `json:"callbackcachesize" yaml:"callbackcachesize"`         // Keyboards kept by the callback data cache.

	Debug bool `json:"debug" yaml:"debug"` // Debug mode lowers the log level.
}

// LoadConfig loads the configuration from the specified file.
//
// The format is chosen by the file extension: ".yaml" and ".yml" files are
// parsed as YAML, everything else as JSON.
//
// Args:
//   - filename: The name of the configuration file.
//
// Returns:
//   - *Config: A pointer to the Config struct.
//   - error: An error if the loading fails.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	var config Config
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %v", err)
	}

	return &config, nil
}

// SaveConfig saves the configuration to the specified file.
//
// The format is chosen by the file extension, mirroring [LoadConfig].
//
// Args:
//   - filename: The name of the configuration file.
//   - config: The Config struct to save.
//
// Returns:
//   - error: An error if the saving fails.
func SaveConfig(filename string, config *Config) error {
	var data []byte
	var err error

	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config data: %v", err)
	}

	err = os.WriteFile(filename, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	return nil
}
