package tracker

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/df-mc/dragonfly/server"
	"github.com/restartfu/gophig"
	"github.com/smell-of-curry/servers-info-track/tracker/database"
	"github.com/smell-of-curry/servers-info-track/tracker/internal"
	"github.com/smell-of-curry/servers-info-track/tracker/util"
)

// Config holds the tracker configuration: the server list database, the
// identity of this server and the settings of the dragonfly server itself.
type Config struct {
	Tracker struct {
		LogLevel  string // Can be "debug", "info", "warn", "error"
		LogFile   string // Rotated log file, empty logs to stderr only
		SentryDsn string

		UpdateInterval util.Duration // Minimum time between player triggered updates
		TaskTimeout    util.Duration
		UnloadTimeout  util.Duration
	}
	Database database.Config

	ServerID   int    `toml:"ServerId"`
	ServerName string `toml:"ServerName"`
	ServerIP   string `toml:"ServerIp"`

	Service struct {
		StatusAddress string // Empty disables the status api
		StatusKey     string
	}
	server.UserConfig
}

// DefaultConfig returns a config with prefilled default values.
func DefaultConfig() Config {
	c := Config{}

	c.Tracker.LogLevel = "info"
	c.Tracker.UpdateInterval = util.Duration(internal.DefaultUpdateInterval)
	c.Tracker.TaskTimeout = util.Duration(internal.DefaultTaskTimeout)
	c.Tracker.UnloadTimeout = util.Duration(internal.DefaultUnloadTimeout)

	c.Database.Port = internal.DefaultDatabasePort
	c.Database.TableName = internal.DefaultTableName

	c.ServerID = internal.DefaultServerID
	c.ServerName = internal.DefaultServerName
	c.ServerIP = internal.DefaultServerIP

	c.UserConfig = server.DefaultConfig()
	return c
}

// Normalize replaces blank values that must never reach the database.
func (c *Config) Normalize() {
	if strings.TrimSpace(c.ServerName) == "" {
		c.ServerName = internal.PlaceholderServerName
	}
	if strings.TrimSpace(c.ServerIP) == "" {
		c.ServerIP = internal.DefaultServerIP
	}
	if strings.TrimSpace(c.Database.TableName) == "" {
		c.Database.TableName = internal.DefaultTableName
	}
	if c.Database.Port == 0 {
		c.Database.Port = internal.DefaultDatabasePort
	}
	if c.Tracker.UpdateInterval == 0 {
		c.Tracker.UpdateInterval = util.Duration(internal.DefaultUpdateInterval)
	}
	if c.Tracker.TaskTimeout == 0 {
		c.Tracker.TaskTimeout = util.Duration(internal.DefaultTaskTimeout)
	}
	if c.Tracker.UnloadTimeout == 0 {
		c.Tracker.UnloadTimeout = util.Duration(internal.DefaultUnloadTimeout)
	}
}

// Identity returns the identity written into this server's row.
func (c Config) Identity() database.Identity {
	return database.Identity{ID: c.ServerID, Name: c.ServerName, IP: c.ServerIP}
}

// ParseLogLevel returns the appropriate slog.Level based on string configuration.
// Returns an error if the provided log level string is not recognized.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unrecognized log level: %q", level)
	}
}

// ReadConfig loads the configuration from path. Keys missing from the file
// keep their default values. If the file doesn't exist, it is created from
// the default values, after asking the operator for the database settings
// when interactive is set.
func ReadConfig(path string, interactive bool) (Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if interactive {
			if err = promptConfig(&c); err != nil {
				return Config{}, fmt.Errorf("setup: %w", err)
			}
		}
		g := gophig.NewGophig[Config](path, gophig.TOMLMarshaler{}, os.ModePerm)
		if err = g.SaveConf(c); err != nil {
			return Config{}, err
		}
		c.Normalize()
		return c, nil
	}
	if err != nil {
		return Config{}, err
	}
	if err = (gophig.TOMLMarshaler{}).Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	c.Normalize()
	return c, nil
}
