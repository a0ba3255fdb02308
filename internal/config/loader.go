package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/voyago/rumkit/internal/ptr"
)

// FileConfig is the declarative shape read from a YAML/JSON/TOML file or
// environment variables, generalizing the teacher's InitGlobalConfig /
// LoadDomainConfig split into a single RUM-agent-shaped document. It is an
// alternative to constructing OpenKitConfiguration/HTTPConfiguration by
// hand, useful for CLI and demo entrypoints.
type FileConfig struct {
	ApplicationID      string `mapstructure:"application_id" validate:"required"`
	ApplicationName    string `mapstructure:"application_name" validate:"required"`
	ApplicationVersion string `mapstructure:"application_version"`
	// DeviceIDOverride is a pointer so an absent value (fall back to a
	// random device id) is distinguishable from an explicit 0.
	DeviceIDOverride *int64 `mapstructure:"device_id_override"`
	OperatingSystem  string `mapstructure:"operating_system"`
	Manufacturer       string `mapstructure:"manufacturer"`

	BeaconURL string `mapstructure:"beacon_url" validate:"required,url"`

	DataCollectionLevel string `mapstructure:"data_collection_level" validate:"omitempty,oneof=off performance user_behavior"`
	CrashReportingLevel string `mapstructure:"crash_reporting_level" validate:"omitempty,oneof=off opted_out opted_in"`

	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

var validate = validator.New()

// Load reads configuration from the given file path (if non-empty) plus
// environment variables prefixed RUMKIT_, validates it, and returns the
// parsed document.
func Load(path string) (*FileConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("RUMKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("application_version", "1.0.0")
	v.SetDefault("operating_system", "unknown")
	v.SetDefault("data_collection_level", "performance")
	v.SetDefault("crash_reporting_level", "opted_in")
	v.SetDefault("log.env", "development")
	v.SetDefault("log.level", 4)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg FileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// ResolvedDeviceIDOverride returns the configured device id override, or 0
// (letting OpenKit derive a random one) when the field was left unset.
func (c *FileConfig) ResolvedDeviceIDOverride() int64 {
	return ptr.SafeVal(c.DeviceIDOverride, 0)
}

// ParseDataCollectionLevel converts the config string form into the typed level.
func ParseDataCollectionLevel(s string) DataCollectionLevel {
	switch s {
	case "off":
		return DataCollectionOff
	case "user_behavior":
		return DataCollectionUserBehavior
	default:
		return DataCollectionPerformance
	}
}

// ParseCrashReportingLevel converts the config string form into the typed level.
func ParseCrashReportingLevel(s string) CrashReportingLevel {
	switch s {
	case "off":
		return CrashReportingOff
	case "opted_out":
		return CrashReportingOptedOut
	default:
		return CrashReportingOptedIn
	}
}
