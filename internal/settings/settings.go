// Package settings holds the ambient runtime configuration for the macro
// engine binary — everything that is not part of the pattern/command
// grammar itself: which command sink backend to use, the MQTT broker to
// publish to, the status server's listen address, and the history soft cap.
// It is loaded the same way the rest of the codebase loads configuration:
// defaults, then an optional config file, then explicit flags, via
// internal/config.ConfigLoader.
package settings

import (
	"os"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"

	"github.com/larsks/airdancer/internal/config"
)

// Settings is the runtime configuration struct handed to ConfigLoader.
type Settings struct {
	// PatternFile is the path to the pattern/command grammar file; this is
	// the one setting that is always required.
	PatternFile string `mapstructure:"pattern-file"`

	// SinkBackend selects a registered sink.Registry backend ("shell" or
	// "mqtt").
	SinkBackend string `mapstructure:"sink-backend"`

	// Shell is the interpreter the shell sink invokes.
	Shell string `mapstructure:"shell"`

	// MQTTBroker is the broker URL (mqtt://host:port) the mqtt sink connects
	// to.
	MQTTBroker string `mapstructure:"mqtt-broker"`

	// MQTTTopic is the topic the MQTT sink publishes matched commands to.
	MQTTTopic string `mapstructure:"mqtt-topic"`

	// HistorySoftCap bounds in-memory history length (matcher.DefaultSoftCap
	// is used when this is zero).
	HistorySoftCap int `mapstructure:"history-soft-cap"`

	// StatusListenAddress is the address the read-only introspection HTTP
	// server binds, or empty to disable it.
	StatusListenAddress string `mapstructure:"status-listen-address"`

	// Debug, when set, prints the compiled rule list (in the same grammar
	// it was parsed from) to stdout instead of starting the device manager.
	Debug bool `mapstructure:"-"`

	// ConfigFile records which file, if any, populated these settings; it is
	// restored by ConfigLoader after unmarshaling and is not itself part of
	// the file format.
	ConfigFile string `mapstructure:"-"`
}

// AddFlags registers one flag per setting, matching cli.Configurable.
func (s *Settings) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&s.ConfigFile, "config", s.ConfigFile, "path to the settings file (defaults to the XDG per-user location)")
	fs.StringVarP(&s.PatternFile, "pattern-file", "c", s.PatternFile, "path to the pattern/command configuration file")
	fs.StringVar(&s.SinkBackend, "sink-backend", s.SinkBackend, "command sink backend: shell or mqtt")
	fs.StringVar(&s.Shell, "shell", s.Shell, "shell interpreter used by the shell sink")
	fs.StringVar(&s.MQTTBroker, "mqtt-broker", s.MQTTBroker, "MQTT broker URL, e.g. mqtt://localhost:1883")
	fs.StringVar(&s.MQTTTopic, "mqtt-topic", s.MQTTTopic, "MQTT topic the mqtt sink publishes matched commands to")
	fs.IntVar(&s.HistorySoftCap, "history-soft-cap", s.HistorySoftCap, "maximum retained history entries before trimming")
	fs.StringVar(&s.StatusListenAddress, "status-listen-address", s.StatusListenAddress, "address for the read-only status server, empty to disable")
	fs.BoolVar(&s.Debug, "debug", s.Debug, "print the compiled rule list and exit instead of starting")
}

// Defaults returns the baseline values ConfigLoader applies before the
// config file and flags are layered on top.
func Defaults() map[string]any {
	return map[string]any{
		"sink-backend":     "shell",
		"shell":            "sh",
		"history-soft-cap": 256,
	}
}

// DefaultSettingsFile resolves the XDG-standard per-user settings file path,
// creating any missing parent directories.
func DefaultSettingsFile() (string, error) {
	return xdg.ConfigFile("pedalmacro/settings.toml")
}

// LoadConfigWithFlagSet loads settings with the usual
// defaults-then-file-then-flags precedence, satisfying cli.Configurable. If
// no --config flag was given, it falls back to the XDG per-user settings
// file when that file actually exists; a file named explicitly via --config
// must exist, but a never-created default file is not an error, since every
// default has a sensible baseline.
func (s *Settings) LoadConfigWithFlagSet(fs *pflag.FlagSet) error {
	configFile := s.ConfigFile
	if configFile == "" {
		if path, err := DefaultSettingsFile(); err == nil {
			if _, statErr := os.Stat(path); statErr == nil {
				configFile = path
			}
		}
	}

	loader := config.NewConfigLoader()
	loader.SetConfigFile(configFile)
	loader.SetDefaults(Defaults())

	return loader.LoadConfigWithFlagSet(s, fs)
}
