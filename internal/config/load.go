package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"arrivatui/internal/arriva"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the resolved runtime configuration.
type Config struct {
	StopsURL    string        `validate:"required,url"`
	TripsURL    string        `validate:"required,url"`
	UserAgent   string        `validate:"required"`
	Timeout     time.Duration `validate:"gt=0"`
	Date        string        `validate:"omitempty,ddmmyyyy"`
	LogFile     string
	Debug       bool
	MetricsAddr string `validate:"omitempty,hostname_port"`
	GTFSPath    string `validate:"omitempty,file"`
	NoColor     bool
}

// Load initializes the configuration from .env, an optional config file and environment variables.
func Load(cfgFile string) error {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("ARRIVATUI")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || (cfgFile == "" && errors.Is(err, fs.ErrNotExist)) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	return nil
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("stops_url", arriva.DefaultStopsURL)
	viper.SetDefault("trips_url", arriva.DefaultTripsURL)
	viper.SetDefault("user_agent", arriva.DefaultUserAgent)
	viper.SetDefault("timeout", "15s")
	viper.SetDefault("date", "")
	viper.SetDefault("log_file", "")
	viper.SetDefault("debug", false)
	viper.SetDefault("metrics_addr", "")
	viper.SetDefault("gtfs_path", "")
	viper.SetDefault("no_color", false)
}

// Current snapshots viper into a Config.
func Current() Config {
	return Config{
		StopsURL:    viper.GetString("stops_url"),
		TripsURL:    viper.GetString("trips_url"),
		UserAgent:   viper.GetString("user_agent"),
		Timeout:     parseTimeout(viper.GetString("timeout")),
		Date:        viper.GetString("date"),
		LogFile:     viper.GetString("log_file"),
		Debug:       viper.GetBool("debug"),
		MetricsAddr: viper.GetString("metrics_addr"),
		GTFSPath:    viper.GetString("gtfs_path"),
		NoColor:     viper.GetBool("no_color"),
	}
}

// parseTimeout accepts a Go duration or a bare number of seconds.
func parseTimeout(raw string) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return d
}
