package spanlog

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the file and environment form of the logger settings. Every key
// can be set through SPANLOG_<KEY>, e.g. SPANLOG_FILTER or SPANLOG_LOG_DIR.
type Config struct {
	Filter      string // see ParseFilter
	LogDir      string
	ProcessName string // file name prefix, defaults to the executable name
	QueueSize   int
	Rotation    string // never, minutely, hourly, daily
	ANSI        string // auto, always, never
	SpanEvents  bool
	Console     bool
	File        bool
}

func defaultConfig() Config {
	return Config{
		Filter:     "info",
		LogDir:     DefaultLogDir,
		QueueSize:  DefaultQueueSize,
		Rotation:   RotationNever.String(),
		ANSI:       "auto",
		SpanEvents: true,
		Console:    true,
		File:       true,
	}
}

// LoadConfig reads settings from defaults, the optional YAML file at path and
// SPANLOG_* environment variables, in increasing precedence. An empty path
// skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SPANLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("filter", cfg.Filter)
	v.SetDefault("log_dir", cfg.LogDir)
	v.SetDefault("process_name", cfg.ProcessName)
	v.SetDefault("queue_size", cfg.QueueSize)
	v.SetDefault("rotation", cfg.Rotation)
	v.SetDefault("ansi", cfg.ANSI)
	v.SetDefault("span_events", cfg.SpanEvents)
	v.SetDefault("console", cfg.Console)
	v.SetDefault("file", cfg.File)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading logging config %s: %w", path, err)
		}
	}

	cfg.Filter = v.GetString("filter")
	cfg.LogDir = v.GetString("log_dir")
	cfg.ProcessName = v.GetString("process_name")
	cfg.QueueSize = v.GetInt("queue_size")
	cfg.Rotation = v.GetString("rotation")
	cfg.ANSI = v.GetString("ansi")
	cfg.SpanEvents = v.GetBool("span_events")
	cfg.Console = v.GetBool("console")
	cfg.File = v.GetBool("file")

	return cfg, nil
}

// Options validates cfg and converts it to logger options. Invalid values are
// reported as *ConfigurationError.
func (cfg Config) Options() ([]LoggerOption, error) {
	filter, err := ParseFilter(cfg.Filter)
	if err != nil {
		return nil, err
	}
	rotation, err := ParseRotation(cfg.Rotation)
	if err != nil {
		return nil, err
	}
	ansi, err := ParseANSIMode(cfg.ANSI)
	if err != nil {
		return nil, err
	}
	if cfg.QueueSize < 0 {
		return nil, &ConfigurationError{Setting: "queue_size", Value: fmt.Sprint(cfg.QueueSize), Err: fmt.Errorf("must not be negative")}
	}

	opts := []LoggerOption{
		WithFilter(filter),
		WithANSI(ansi),
		WithRotation(rotation),
		WithAsyncBuffer(cfg.QueueSize),
		WithSpanEvents(cfg.SpanEvents),
	}
	if cfg.LogDir != "" {
		opts = append(opts, WithLogDir(cfg.LogDir))
	}
	if cfg.ProcessName != "" {
		opts = append(opts, WithProcessName(cfg.ProcessName))
	}
	if !cfg.Console {
		opts = append(opts, WithoutConsole())
	}
	if !cfg.File {
		opts = append(opts, WithoutFile())
	}
	return opts, nil
}
