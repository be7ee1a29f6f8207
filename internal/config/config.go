package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// HistoryLimit caps stored messages per room.
	HistoryLimit int `mapstructure:"history_limit" yaml:"history_limit"`
	// HistoryReplay is how many recent messages a joining client receives.
	HistoryReplay int `mapstructure:"history_replay" yaml:"history_replay"`
	// RoomGrace is how long an empty room survives before deletion.
	RoomGrace time.Duration `mapstructure:"room_grace" yaml:"room_grace"`
	// EventRateLimit caps inbound events per connection per minute; 0 disables.
	EventRateLimit int `mapstructure:"event_rate_limit" yaml:"event_rate_limit"`
	// ClientQueue bounds each connection's outbound event buffer.
	ClientQueue int `mapstructure:"client_queue" yaml:"client_queue"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		HistoryLimit:      1000,
		HistoryReplay:     50,
		RoomGrace:         30 * time.Second,
		EventRateLimit:    0,
		ClientQueue:       32,
	}
}
