package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultConfigName is the file looked up in the working directory when no
// config file is given.
const DefaultConfigName = "wallscan.cfg.json"

// EnvPrefix prefixes environment overrides, e.g. WALLSCAN_STORAGE_TYPE.
const EnvPrefix = "WALLSCAN"

// RosterConfig lists the tracked players of both teams.
type RosterConfig struct {
	TeamOne []string `json:"teamOne" mapstructure:"teamOne"`
	TeamTwo []string `json:"teamTwo" mapstructure:"teamTwo"`
}

// DetectorConfig holds the line-of-sight gate settings.
type DetectorConfig struct {
	PitchTolerance float64 `json:"pitchTolerance" mapstructure:"pitchTolerance"`
	YawTolerance   float64 `json:"yawTolerance" mapstructure:"yawTolerance"`
	BearingMode    string  `json:"bearingMode" mapstructure:"bearingMode"`
	RoundObjective string  `json:"roundObjective" mapstructure:"roundObjective"`
}

// JSONConfig holds JSON file storage backend settings
type JSONConfig struct {
	OutputPath     string `json:"outputPath" mapstructure:"outputPath"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	JSON   JSONConfig   `json:"json" mapstructure:"json"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// Load sets default values, then reads configuration from a JSON file.
// With an empty path the working directory is searched for DefaultConfigName
// and a missing file is not an error.
func Load(path string) error {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigType("json")
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName(DefaultConfigName)
		viper.AddConfigPath(".")
	}

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./wallscan_logs")

	viper.SetDefault("roster.teamOne", []string{"Calyx", "paz", "ngiN", "XANTARES", "MAJ3R"})
	viper.SetDefault("roster.teamTwo", []string{"fer", "felps", "TACO", "coldzera", "FalleN"})

	viper.SetDefault("detector.pitchTolerance", 0.7)
	viper.SetDefault("detector.yawTolerance", 0.05)
	viper.SetDefault("detector.bearingMode", "atan2")
	viper.SetDefault("detector.roundObjective", "BOMB TARGET")

	viper.SetDefault("storage.type", "json")
	viper.SetDefault("storage.json.outputPath", "./wallscan_results.json")
	viper.SetDefault("storage.json.compressOutput", false)
	viper.SetDefault("storage.sqlite.path", "./wallscan_results.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "wallscan")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "wallscan")
	viper.SetDefault("influx.bucket", "wallscan")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.serviceName", "wallscan")
}

// BindFlags binds command line flags to config keys. Flags that were not
// set on the command line leave the file and env values in place.
func BindFlags(flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		f := flags.Lookup(name)
		if f == nil {
			return fmt.Errorf("unknown flag %q for key %q", name, key)
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %q: %w", name, err)
		}
	}
	return nil
}

// GetRosterConfig returns the configured team lists.
func GetRosterConfig() RosterConfig {
	return RosterConfig{
		TeamOne: viper.GetStringSlice("roster.teamOne"),
		TeamTwo: viper.GetStringSlice("roster.teamTwo"),
	}
}

// GetDetectorConfig returns the gate settings.
func GetDetectorConfig() DetectorConfig {
	return DetectorConfig{
		PitchTolerance: viper.GetFloat64("detector.pitchTolerance"),
		YawTolerance:   viper.GetFloat64("detector.yawTolerance"),
		BearingMode:    viper.GetString("detector.bearingMode"),
		RoundObjective: viper.GetString("detector.roundObjective"),
	}
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		JSON: JSONConfig{
			OutputPath:     viper.GetString("storage.json.outputPath"),
			CompressOutput: viper.GetBool("storage.json.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
	}
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
