// Package config provides configuration loading, validation, and defaults
// for the irclogd daemon. Settings come from config.yaml with IRCLOG_*
// environment variable overrides.
package config

import (
	"time"
)

// Config defines all settings for the daemon.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	IRC       IRCConfig       `mapstructure:"irc"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"  validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// IRCConfig describes the network connection whose events this instance
// records. Network names the connection; events tagged with a different
// network are never logged.
type IRCConfig struct {
	Network       string        `mapstructure:"network"        validate:"required"`
	Server        string        `mapstructure:"server"         validate:"required,hostname_port"`
	Nick          string        `mapstructure:"nick"           validate:"required"`
	User          string        `mapstructure:"user"`
	RealName      string        `mapstructure:"realname"`
	Password      string        `mapstructure:"password"`
	TLS           bool          `mapstructure:"tls"`
	Channels      []string      `mapstructure:"channels"       validate:"required,min=1,dive,required"`
	QuitMessage   string        `mapstructure:"quit_message"`
	Version       string        `mapstructure:"version"`
	ReconnectFreq time.Duration `mapstructure:"reconnect_freq" validate:"min=0"`
	Debug         bool          `mapstructure:"debug"`
}

// DatabaseConfig describes how to reach the storage backend. Source is the
// driver-specific connection string without credentials; Username, Password
// and the Params option map are merged in when the DSN is assembled.
type DatabaseConfig struct {
	Driver          string            `mapstructure:"driver"   validate:"required,oneof=sqlite mysql"`
	Source          string            `mapstructure:"source"   validate:"required"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"    validate:"min=1"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"    validate:"min=1"`
	ConnMaxLifetime time.Duration     `mapstructure:"conn_max_lifetime"`
}

// SchedulerConfig holds cron schedules for background maintenance tasks,
// keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a named scheduled task and sets its cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}
