package config

import "time"

// Config represents the complete client configuration
type Config struct {
	Server   ServerConfig   `toml:"server" yaml:"server"`
	Profile  ProfileConfig  `toml:"profile" yaml:"profile"`
	Protocol ProtocolConfig `toml:"protocol" yaml:"protocol"`
	Limits   LimitsConfig   `toml:"limits" yaml:"limits"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
}

// ServerConfig contains IRC server connection settings
type ServerConfig struct {
	Host           string `toml:"host" yaml:"host"`
	Port           int    `toml:"port" yaml:"port"`
	TLS            bool   `toml:"tls" yaml:"tls"`
	VerifyHostname bool   `toml:"verify_hostname" yaml:"verify_hostname"`
	CAFile         string `toml:"ca_file" yaml:"ca_file"`
	Proxy          string `toml:"proxy" yaml:"proxy"`
	LowBandwidth   bool   `toml:"low_bandwidth" yaml:"low_bandwidth"`
	ReadTimeout    int    `toml:"read_timeout" yaml:"read_timeout"`
}

// ProfileConfig describes the local chum
type ProfileConfig struct {
	Handle   string   `toml:"handle" yaml:"handle"`
	Mood     string   `toml:"mood" yaml:"mood"`
	Color    string   `toml:"color" yaml:"color"`
	Contacts []string `toml:"contacts" yaml:"contacts"`
}

// ProtocolConfig contains protocol constants that differ between networks
type ProtocolConfig struct {
	PresenceChannel string `toml:"presence_channel" yaml:"presence_channel"`
	ChannelModes    string `toml:"channel_modes" yaml:"channel_modes"`
	Version         string `toml:"version" yaml:"version"`
	SourceURL       string `toml:"source_url" yaml:"source_url"`
}

// LimitsConfig contains outbound rate limiting and reconnection settings
type LimitsConfig struct {
	SendBurst         int  `toml:"send_burst" yaml:"send_burst"`
	SendIntervalMS    int  `toml:"send_interval_ms" yaml:"send_interval_ms"`
	AutoReconnect     bool `toml:"auto_reconnect" yaml:"auto_reconnect"`
	ReconnectDelayMin int  `toml:"reconnect_delay_min" yaml:"reconnect_delay_min"` // seconds
	ReconnectDelayMax int  `toml:"reconnect_delay_max" yaml:"reconnect_delay_max"` // seconds
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Debug        bool   `toml:"debug" yaml:"debug"`
	ErrorLog     string `toml:"error_log" yaml:"error_log"`
	MaxLogSizeMB int    `toml:"max_log_size_mb" yaml:"max_log_size_mb"`
	MaxLogFiles  int    `toml:"max_log_files" yaml:"max_log_files"`
}

// GetReadTimeoutDuration returns the socket read timeout as a time.Duration
func (c *ServerConfig) GetReadTimeoutDuration() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}

// GetSendIntervalDuration returns the refill interval as a time.Duration
func (c *LimitsConfig) GetSendIntervalDuration() time.Duration {
	return time.Duration(c.SendIntervalMS) * time.Millisecond
}

// GetReconnectDelayMinDuration returns the first reconnect delay as a time.Duration
func (c *LimitsConfig) GetReconnectDelayMinDuration() time.Duration {
	return time.Duration(c.ReconnectDelayMin) * time.Second
}

// GetReconnectDelayMaxDuration returns the reconnect delay ceiling as a time.Duration
func (c *LimitsConfig) GetReconnectDelayMaxDuration() time.Duration {
	return time.Duration(c.ReconnectDelayMax) * time.Second
}
