package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for optional configuration parameters.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultIRCUser        = "irclogd"
	DefaultIRCRealName    = "irclogd channel logger"
	DefaultIRCQuitMessage = "logging stopped"
	DefaultIRCVersion     = "irclogd"
	DefaultReconnectFreq  = 30 * time.Second

	DefaultDBDriver = "sqlite"
	DefaultDBSource = "irclog.db"

	// The store owns one connection for the process lifetime; each logical
	// operation is its own implicit transaction on it.
	DefaultDBMaxOpenConns    = 1
	DefaultDBMaxIdleConns    = 1
	DefaultDBConnMaxLifetime = 5 * time.Minute
)

// setDefaults registers every configuration key with viper so environment
// overrides are picked up even when the key is absent from the config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("irc.network", "")
	v.SetDefault("irc.server", "")
	v.SetDefault("irc.nick", "")
	v.SetDefault("irc.user", DefaultIRCUser)
	v.SetDefault("irc.realname", DefaultIRCRealName)
	v.SetDefault("irc.password", "")
	v.SetDefault("irc.tls", false)
	v.SetDefault("irc.channels", []string{})
	v.SetDefault("irc.quit_message", DefaultIRCQuitMessage)
	v.SetDefault("irc.version", DefaultIRCVersion)
	v.SetDefault("irc.reconnect_freq", DefaultReconnectFreq)
	v.SetDefault("irc.debug", false)

	v.SetDefault("database.driver", DefaultDBDriver)
	v.SetDefault("database.source", DefaultDBSource)
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.params", map[string]string{})
	v.SetDefault("database.max_open_conns", DefaultDBMaxOpenConns)
	v.SetDefault("database.max_idle_conns", DefaultDBMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", DefaultDBConnMaxLifetime)
}
