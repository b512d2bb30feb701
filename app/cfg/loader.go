package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./ratewatch.db" description:"Path to the sqlite database file"`

	// Application configuration
	SourcesDir   string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing rate source configuration files"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	CronSpec     string `long:"cron-spec" env:"CRON_SPEC" default:"0 6 * * *" description:"Cron expression controlling pipeline run cadence"`
	TopN         int    `long:"top-n" env:"TOP_N" default:"3" description:"Default number of offers persisted per source per run"`
	HTTPTimeout  int    `long:"http-timeout" env:"HTTP_TIMEOUT" default:"30" description:"HTTP fetch timeout in seconds"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Notification configuration
	SMTPHost     string `long:"smtp-host" env:"SMTP_HOST" description:"SMTP server host (notifications disabled when empty)"`
	SMTPPort     int    `long:"smtp-port" env:"SMTP_PORT" default:"587" description:"SMTP server port"`
	SMTPUser     string `long:"smtp-user" env:"SMTP_USER" description:"SMTP user / sender address"`
	SMTPPassword string `long:"smtp-password" env:"SMTP_PASSWORD" description:"SMTP password"`
	NotifyEmail  string `long:"notify-email" env:"NOTIFY_EMAIL" description:"Recipient for rate alerts"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RateWatch/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:       raw.DBPath,
		SourcesDir:   raw.SourcesDir,
		Port:         raw.Port,
		CronSpec:     raw.CronSpec,
		TopN:         raw.TopN,
		HTTPTimeout:  raw.HTTPTimeout,
		APIAccessKey: raw.APIAccessKey,
		SMTPHost:     raw.SMTPHost,
		SMTPPort:     raw.SMTPPort,
		SMTPUser:     raw.SMTPUser,
		SMTPPassword: raw.SMTPPassword,
		NotifyEmail:  raw.NotifyEmail,
		UserAgent:    raw.UserAgent,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
