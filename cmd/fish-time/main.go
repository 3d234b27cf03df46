package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Superior-Josh/fish-time-pro/internal/api"
	"github.com/Superior-Josh/fish-time-pro/internal/calendar"
	"github.com/Superior-Josh/fish-time-pro/internal/config"
	"github.com/Superior-Josh/fish-time-pro/internal/daemon"
	"github.com/Superior-Josh/fish-time-pro/internal/store/sqlite"
	"github.com/Superior-Josh/fish-time-pro/internal/timemanager"
)

const timeLayout = "2006-01-02 15:04"

var (
	configPath string
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fish-time",
		Short: "Fish Time Pro",
		Long:  "Shows how much of today's salary has been earned, based on work hours and the public holiday calendar",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Daemon.LogFile != "" {
				logger, err = initFileLogger(cfg.Daemon.LogFile, cfg.Daemon.LogLevel)
				if err != nil {
					initLogger(cfg.Daemon.LogLevel) // Fallback to console
				}
			} else if err == nil {
				initLogger(cfg.Daemon.LogLevel)
			} else {
				initLogger("info") // Default console logger
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ./config.yaml or ~/.fish-time/config.yaml)")

	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func statusCmd() *cobra.Command {
	var atStr string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print today's pay progress once",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if atStr != "" {
				parsed, err := time.ParseInLocation(timeLayout, atStr, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --at value: %w", err)
				}
				now = parsed
			}

			cfg, err := config.NewLoader(configPath, logger).Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			manager, closeCache, err := initializeManager(cfg)
			if err != nil {
				return err
			}
			defer closeCache()

			report := manager.Status(cmd.Context(), now)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.Title)
			fmt.Fprintln(out, "═══════════════════════════════════════════════════════")
			for _, line := range report.Tooltip {
				fmt.Fprintf(out, "  %s\n", line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&atStr, "at", "", "Compute for a given local time ("+timeLayout+")")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

func runCmd() *cobra.Command {
	var withAPI bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the live pay progress daemon (system tray on Windows)",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader(configPath, logger)
			cfg, err := loader.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			manager, closeCache, err := initializeManager(cfg)
			if err != nil {
				return err
			}
			defer closeCache()

			d := daemon.NewDaemon(manager, cfg.Daemon.SystemTray, logger)
			loader.Watch(d.UpdateConfig, logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if withAPI {
				router := api.NewRouter(api.NewHandler(d, logger), logger)
				go func() {
					if err := api.Serve(ctx, cfg.API.Listen, router, logger); err != nil {
						logger.Error("HTTP API stopped", zap.Error(err))
					}
				}()
			}

			logger.Info("Starting daemon",
				zap.String("config_file", loader.ConfigFileUsed()),
				zap.Bool("system_tray", cfg.Daemon.SystemTray),
				zap.Bool("api", withAPI))

			return d.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&withAPI, "api", false, "Also serve the local HTTP API")

	return cmd
}

func serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon headless and serve the local HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader(configPath, logger)
			cfg, err := loader.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if listen == "" {
				listen = cfg.API.Listen
			}

			manager, closeCache, err := initializeManager(cfg)
			if err != nil {
				return err
			}
			defer closeCache()

			d := daemon.NewDaemon(manager, false, logger)
			d.AddSink(daemon.NewConsoleSink(logger))
			loader.Watch(d.UpdateConfig, logger)

			d.Start()
			defer d.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			router := api.NewRouter(api.NewHandler(d, logger), logger)
			return api.Serve(ctx, listen, router, logger)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides api.listen)")

	return cmd
}

// initializeManager wires the calendar fetcher and cache into a Manager.
// The returned function closes the cache.
func initializeManager(cfg *config.Config) (*timemanager.Manager, func() error, error) {
	fetcher := calendar.NewFetcher(cfg.Calendar.GetTimeout(), logger)

	var cache calendar.Cache = calendar.NewMemoryCache()
	closeCache := func() error { return nil }

	if cfg.Calendar.CachePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Calendar.CachePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		store, err := sqlite.New(cfg.Calendar.CachePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open calendar cache: %w", err)
		}
		cache = store
		closeCache = store.Close
		logger.Debug("Using SQLite calendar cache", zap.String("path", cfg.Calendar.CachePath))
	}

	return timemanager.NewManager(cfg, fetcher, cache, logger), closeCache, nil
}

func initLogger(level string) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(parseLevel(level))

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		parseLevel(level),
	)

	return zap.New(core), nil
}

func parseLevel(level string) zapcore.Level {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return zapLevel
}
