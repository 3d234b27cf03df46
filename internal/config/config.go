package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Superior-Josh/fish-time-pro/internal/payroll"
	"github.com/Superior-Josh/fish-time-pro/internal/workday"
	"github.com/Superior-Josh/fish-time-pro/pkg/dateutil"
)

// Fallback minutes used when a configured clock value cannot be parsed
const (
	FallbackMorningStart   = 540
	FallbackMorningEnd     = 720
	FallbackAfternoonStart = 810
	FallbackAfternoonEnd   = 1080
)

// DefaultCalendarURL is a public iCalendar feed of mainland China statutory holidays
const DefaultCalendarURL = "https://calendars.icloud.com/holidays/cn_zh.ics"

// Config represents application configuration
type Config struct {
	Work     WorkConfig     `mapstructure:"work" yaml:"work"`
	Calendar CalendarConfig `mapstructure:"calendar" yaml:"calendar"`
	Daemon   DaemonConfig   `mapstructure:"daemon" yaml:"daemon"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
	API      APIConfig      `mapstructure:"api" yaml:"api"`
}

// WorkConfig represents salary and daily work windows
type WorkConfig struct {
	MonthlySalary  float64 `mapstructure:"monthly_salary" yaml:"monthly_salary"`
	MorningStart   string  `mapstructure:"morning_start" yaml:"morning_start"`     // HH:MM
	MorningEnd     string  `mapstructure:"morning_end" yaml:"morning_end"`         // HH:MM
	AfternoonStart string  `mapstructure:"afternoon_start" yaml:"afternoon_start"` // HH:MM
	AfternoonEnd   string  `mapstructure:"afternoon_end" yaml:"afternoon_end"`     // HH:MM
	RestDays       []int   `mapstructure:"rest_days" yaml:"rest_days"`             // 1 = Monday ... 7 = Sunday
}

// CalendarConfig represents the holiday calendar source
type CalendarConfig struct {
	URL       string `mapstructure:"url" yaml:"url"`
	CacheTTL  string `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	CachePath string `mapstructure:"cache_path" yaml:"cache_path"` // SQLite file; empty keeps the cache in memory
	Timeout   string `mapstructure:"timeout" yaml:"timeout"`
}

// DaemonConfig represents the background refresh loop configuration
type DaemonConfig struct {
	RefreshInterval        string `mapstructure:"refresh_interval" yaml:"refresh_interval"`
	BlurredRefreshInterval string `mapstructure:"blurred_refresh_interval" yaml:"blurred_refresh_interval"`
	TickInterval           string `mapstructure:"tick_interval" yaml:"tick_interval"`
	SystemTray             bool   `mapstructure:"system_tray" yaml:"system_tray"` // Show system tray icon (Windows only)
	LogFile                string `mapstructure:"log_file" yaml:"log_file"`
	LogLevel               string `mapstructure:"log_level" yaml:"log_level"`
}

// DisplayConfig represents presentation settings
type DisplayConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol" yaml:"currency_symbol"`
	Locale         string `mapstructure:"locale" yaml:"locale"`
}

// APIConfig represents the local HTTP API
type APIConfig struct {
	Listen string `mapstructure:"listen" yaml:"listen"`
}

// Loader reads configuration through a single viper instance so that the
// same file can later be watched for changes
type Loader struct {
	v      *viper.Viper
	path   string
	logger *zap.Logger
}

// NewLoader creates a Loader. An empty path searches the default locations.
func NewLoader(configPath string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.fish-time")
	}

	v.SetEnvPrefix("FISHTIME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v, path: configPath, logger: logger}
}

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	return NewLoader(configPath, nil).Load()
}

// Load reads the configuration. A missing file is only an error when a path
// was given explicitly.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return l.unmarshal()
}

// ConfigFileUsed returns the file the configuration was read from, if any
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Watch calls onChange with the reloaded configuration whenever the file changes
func (l *Loader) Watch(onChange func(*Config), logger *zap.Logger) {
	if l.v.ConfigFileUsed() == "" {
		logger.Debug("No config file in use, not watching")
		return
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := l.unmarshal()
		if err != nil {
			logger.Warn("Failed to reload config", zap.String("file", e.Name), zap.Error(err))
			return
		}
		logger.Info("Config reloaded", zap.String("file", e.Name))
		onChange(cfg)
	})
	l.v.WatchConfig()
}

// typedSettings lists settings whose raw value must convert to a non-string
// type. A value that does not convert is dropped so its default applies.
var typedSettings = []struct {
	section string
	key     string
	check   func(interface{}) error
}{
	{"work", "monthly_salary", func(v interface{}) error { _, err := cast.ToFloat64E(v); return err }},
	{"work", "rest_days", func(v interface{}) error { _, err := cast.ToIntSliceE(v); return err }},
	{"daemon", "system_tray", func(v interface{}) error { _, err := cast.ToBoolE(v); return err }},
}

func (l *Loader) unmarshal() (*Config, error) {
	settings := l.v.AllSettings()
	for _, s := range typedSettings {
		section, ok := settings[s.section].(map[string]interface{})
		if !ok {
			continue
		}
		value, ok := section[s.key]
		if !ok {
			continue
		}
		if err := s.check(value); err != nil {
			l.logger.Warn("Invalid config value, using default",
				zap.String("key", s.section+"."+s.key),
				zap.Any("value", value),
				zap.Error(err))
			delete(section, s.key)
		}
	}

	// Decode from a fresh instance so the dropped keys fall back to defaults
	// without overriding the watched file on the next reload.
	clean := viper.New()
	setDefaults(clean)
	if err := clean.MergeConfigMap(settings); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	var config Config
	if err := clean.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Normalize()
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("work.monthly_salary", d.Work.MonthlySalary)
	v.SetDefault("work.morning_start", d.Work.MorningStart)
	v.SetDefault("work.morning_end", d.Work.MorningEnd)
	v.SetDefault("work.afternoon_start", d.Work.AfternoonStart)
	v.SetDefault("work.afternoon_end", d.Work.AfternoonEnd)
	v.SetDefault("work.rest_days", d.Work.RestDays)

	v.SetDefault("calendar.url", d.Calendar.URL)
	v.SetDefault("calendar.cache_ttl", d.Calendar.CacheTTL)
	v.SetDefault("calendar.cache_path", d.Calendar.CachePath)
	v.SetDefault("calendar.timeout", d.Calendar.Timeout)

	v.SetDefault("daemon.refresh_interval", d.Daemon.RefreshInterval)
	v.SetDefault("daemon.blurred_refresh_interval", d.Daemon.BlurredRefreshInterval)
	v.SetDefault("daemon.tick_interval", d.Daemon.TickInterval)
	v.SetDefault("daemon.system_tray", d.Daemon.SystemTray)
	v.SetDefault("daemon.log_file", d.Daemon.LogFile)
	v.SetDefault("daemon.log_level", d.Daemon.LogLevel)

	v.SetDefault("display.currency_symbol", d.Display.CurrencySymbol)
	v.SetDefault("display.locale", d.Display.Locale)

	v.SetDefault("api.listen", d.API.Listen)
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Work: WorkConfig{
			MonthlySalary:  20450,
			MorningStart:   "10:00",
			MorningEnd:     "11:30",
			AfternoonStart: "13:30",
			AfternoonEnd:   "18:00",
			RestDays:       []int{6, 7},
		},
		Calendar: CalendarConfig{
			URL:      DefaultCalendarURL,
			CacheTTL: "24h",
			Timeout:  "10s",
		},
		Daemon: DaemonConfig{
			RefreshInterval:        "1s",
			BlurredRefreshInterval: "1m",
			TickInterval:           "200ms",
			LogLevel:               "info",
		},
		Display: DisplayConfig{
			CurrencySymbol: "¥",
			Locale:         "zh-CN",
		},
		API: APIConfig{
			Listen: "127.0.0.1:7788",
		},
	}
}

// Normalize corrects values that would otherwise break computation.
// Invalid settings are replaced, never rejected.
func (c *Config) Normalize() {
	if c.Work.MonthlySalary < 0 {
		c.Work.MonthlySalary = 0
	}
	if len(c.Work.RestDays) > 0 {
		valid := make([]int, 0, len(c.Work.RestDays))
		for _, d := range c.Work.RestDays {
			if d >= 1 && d <= 7 {
				valid = append(valid, d)
			}
		}
		if len(valid) == 0 {
			valid = []int{6, 7}
		}
		c.Work.RestDays = valid
	}
	if c.Display.CurrencySymbol == "" {
		c.Display.CurrencySymbol = "¥"
	}
	if c.Display.Locale == "" {
		c.Display.Locale = "zh-CN"
	}
	if c.API.Listen == "" {
		c.API.Listen = "127.0.0.1:7788"
	}
}

// Schedule returns the normalized work schedule. Clock values that cannot be
// parsed fall back to fixed minute defaults.
func (w *WorkConfig) Schedule() payroll.Schedule {
	return payroll.Schedule{
		MorningStart:   parseClockOr(w.MorningStart, FallbackMorningStart),
		MorningEnd:     parseClockOr(w.MorningEnd, FallbackMorningEnd),
		AfternoonStart: parseClockOr(w.AfternoonStart, FallbackAfternoonStart),
		AfternoonEnd:   parseClockOr(w.AfternoonEnd, FallbackAfternoonEnd),
		MonthlySalary:  w.MonthlySalary,
	}.Normalize()
}

// RestDaySet returns the configured rest weekdays
func (w *WorkConfig) RestDaySet() workday.RestDays {
	return workday.NewRestDays(w.RestDays...)
}

func parseClockOr(value string, fallback int) int {
	minutes, err := dateutil.ParseClock(value)
	if err != nil {
		return fallback
	}
	return minutes
}

// GetCacheTTL returns cache TTL duration
func (c *CalendarConfig) GetCacheTTL() time.Duration {
	return parseDurationOr(c.CacheTTL, 24*time.Hour)
}

// GetTimeout returns the HTTP timeout for calendar downloads
func (c *CalendarConfig) GetTimeout() time.Duration {
	return parseDurationOr(c.Timeout, 10*time.Second)
}

// GetRefreshInterval returns the calendar refresh interval while focused.
// Intervals below one second are raised to one second.
func (c *DaemonConfig) GetRefreshInterval() time.Duration {
	return max(parseDurationOr(c.RefreshInterval, time.Second), time.Second)
}

// GetBlurredRefreshInterval returns the refresh interval while not focused
func (c *DaemonConfig) GetBlurredRefreshInterval() time.Duration {
	return max(parseDurationOr(c.BlurredRefreshInterval, time.Minute), c.GetRefreshInterval())
}

// GetTickInterval returns the pay progress recomputation interval
func (c *DaemonConfig) GetTickInterval() time.Duration {
	return max(parseDurationOr(c.TickInterval, 200*time.Millisecond), 10*time.Millisecond)
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}
