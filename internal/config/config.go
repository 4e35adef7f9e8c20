package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/pesterlink/internal/profile"
)

const (
	defaultConfigPath = "config/pesterlink.toml"

	// DefaultChannelModes is the channel mode alphabet of the reference server
	DefaultChannelModes = "cCdfGHikKLlmMNnOPpQRrsSTtVzZ"
)

// Load reads and parses the configuration file from the specified path.
// Files ending in .yaml or .yml are decoded as YAML, everything else as TOML.
// If path is empty, it uses the default path.
func Load(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found at %s", path)
	}

	cfg := DefaultConfig()
	if isYAML(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file: %w", err)
		}
	} else if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrCreate attempts to load the configuration file, and if it doesn't exist,
// creates a default configuration file and returns the default config.
func LoadOrCreate(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("Configuration file not found. Creating default configuration at %s\n", path)

		defaultCfg := DefaultConfig()
		if err := CreateDefault(path, defaultCfg); err != nil {
			return nil, fmt.Errorf("failed to create default configuration: %w", err)
		}

		return defaultCfg, nil
	}

	return Load(path)
}

// CreateDefault writes cfg to path in the format its extension selects
func CreateDefault(path string, cfg *Config) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	if isYAML(path) {
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
		return enc.Close()
	}

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration pointing at the public pesterchum network
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "irc.pesterchum.xyz",
			Port:           6697,
			TLS:            true,
			VerifyHostname: true,
			ReadTimeout:    90,
		},
		Profile: ProfileConfig{
			Handle: "pesterClient",
			Mood:   "chummy",
			Color:  "#000000",
		},
		Protocol: ProtocolConfig{
			PresenceChannel: "#pesterchum",
			ChannelModes:    DefaultChannelModes,
			Version:         "pesterlink 1.0",
			SourceURL:       "https://github.com/yourusername/pesterlink",
		},
		Limits: LimitsConfig{
			SendBurst:         10,
			SendIntervalMS:    500,
			AutoReconnect:     true,
			ReconnectDelayMin: 5,
			ReconnectDelayMax: 300,
		},
		Logging: LoggingConfig{
			ErrorLog:     "logs/error.log",
			MaxLogSizeMB: 10,
			MaxLogFiles:  5,
		},
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// validate checks that all required configuration fields are present and valid.
// The handle is deliberately not checked here; see profile.ValidateHandle.
func validate(cfg *Config) error {
	if cfg.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive, got %d", cfg.Server.ReadTimeout)
	}
	if cfg.Server.CAFile != "" {
		if _, err := os.Stat(cfg.Server.CAFile); err != nil {
			return fmt.Errorf("server.ca_file: %w", err)
		}
	}
	if cfg.Server.Proxy != "" {
		u, err := url.Parse(cfg.Server.Proxy)
		if err != nil {
			return fmt.Errorf("server.proxy: %w", err)
		}
		if u.Scheme != "socks5" && u.Scheme != "socks5h" {
			return fmt.Errorf("server.proxy must be a socks5:// URL, got %q", cfg.Server.Proxy)
		}
	}

	if cfg.Profile.Handle == "" {
		return fmt.Errorf("profile.handle is required")
	}
	if _, err := profile.MoodByName(cfg.Profile.Mood); err != nil {
		return fmt.Errorf("profile.mood: %w", err)
	}
	if _, err := profile.ParseHex(cfg.Profile.Color); err != nil {
		return fmt.Errorf("profile.color: %w", err)
	}

	if !strings.HasPrefix(cfg.Protocol.PresenceChannel, "#") {
		return fmt.Errorf("protocol.presence_channel must start with #, got %q", cfg.Protocol.PresenceChannel)
	}
	if cfg.Protocol.ChannelModes == "" {
		return fmt.Errorf("protocol.channel_modes is required")
	}

	if cfg.Limits.SendBurst < 0 {
		return fmt.Errorf("limits.send_burst must be non-negative, got %d", cfg.Limits.SendBurst)
	}
	if cfg.Limits.SendIntervalMS < 0 {
		return fmt.Errorf("limits.send_interval_ms must be non-negative, got %d", cfg.Limits.SendIntervalMS)
	}
	if cfg.Limits.AutoReconnect {
		if cfg.Limits.ReconnectDelayMin <= 0 {
			return fmt.Errorf("limits.reconnect_delay_min must be positive, got %d", cfg.Limits.ReconnectDelayMin)
		}
		if cfg.Limits.ReconnectDelayMax < cfg.Limits.ReconnectDelayMin {
			return fmt.Errorf("limits.reconnect_delay_max (%d) must be at least reconnect_delay_min (%d)",
				cfg.Limits.ReconnectDelayMax, cfg.Limits.ReconnectDelayMin)
		}
	}

	if cfg.Logging.MaxLogSizeMB <= 0 {
		return fmt.Errorf("logging.max_log_size_mb must be positive, got %d", cfg.Logging.MaxLogSizeMB)
	}
	if cfg.Logging.MaxLogFiles <= 0 {
		return fmt.Errorf("logging.max_log_files must be positive, got %d", cfg.Logging.MaxLogFiles)
	}

	return nil
}

// ProfileFromConfig builds the local profile and contact set described by cfg.
// It assumes cfg has passed validation.
func ProfileFromConfig(cfg *Config) (*profile.Profile, *profile.Contacts) {
	mood, _ := profile.MoodByName(cfg.Profile.Mood)
	color, _ := profile.ParseHex(cfg.Profile.Color)
	return profile.New(cfg.Profile.Handle, color, mood), profile.NewContacts(cfg.Profile.Contacts...)
}
