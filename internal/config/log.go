package config

// LogConfig controls the agent's own diagnostic logging, as opposed to the
// RUM data it ships to the collector on behalf of the host application.
type LogConfig struct {
	// Env selects the driver: "production"/"staging" use the logrus+lumberjack
	// driver, "development" uses the tinted stdout driver, anything else
	// disables logging entirely.
	Env   string `mapstructure:"env"`
	Level int    `mapstructure:"level"` // logrus.Level numeric value
	Path  string `mapstructure:"path"`

	Rotation LogRotationConfig `mapstructure:"rotation"`
}

type LogRotationConfig struct {
	MaxSize   int  `mapstructure:"max_size_mb"`
	MaxBackup int  `mapstructure:"max_backup"`
	MaxAge    int  `mapstructure:"max_age_days"`
	Compress  bool `mapstructure:"compress"`
}
