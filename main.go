package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lexandro/codemap/config"
	"github.com/lexandro/codemap/server"
)

var (
	flagHome     string
	flagLogLevel string
	flagLogFile  string
)

// environment is resolved once per invocation by the root command.
type environment struct {
	paths  config.Paths
	global config.Global
}

var env environment

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "codemap",
	Short:         "Keep a structural code index in CLAUDE.md up to date",
	Long:          "codemap watches registered projects and keeps a generated index of their files and symbols in each project's CLAUDE.md.",
	Version:       server.Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvironment()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHome, "home", "", "codemap home directory (default: $CODEMAP_HOME or the user config dir)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (default: from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "log file path (default: stderr, or codemap.log in the home directory for the daemon)")
}

// loadEnvironment reads .env, locates the home directory and loads the
// global configuration with its CODEMAP_* overrides.
func loadEnvironment() error {
	_ = godotenv.Load()

	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	global, err := config.Load(paths.ConfigFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if flagLogLevel != "" {
		global.LogLevel = flagLogLevel
	}
	if flagLogFile != "" {
		global.LogFile = flagLogFile
	}
	env = environment{paths: paths, global: global}
	return nil
}

func resolvePaths() (config.Paths, error) {
	if flagHome != "" {
		return config.PathsIn(flagHome), nil
	}
	return config.DefaultPaths()
}

// commandLogger logs to the configured file or stderr.
func (e environment) commandLogger() *slog.Logger {
	return setupLogger(e.global.LogLevel, e.global.LogFile)
}

// daemonLogger logs to the configured file, defaulting to the home directory.
func (e environment) daemonLogger() *slog.Logger {
	logFile := e.global.LogFile
	if logFile == "" {
		logFile = e.paths.LogFile
	}
	return setupLogger(e.global.LogLevel, logFile)
}

// setupLogger creates an slog.Logger writing to stderr or a file.
// Never stdout: the MCP transport owns it.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var writer *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
			writer = os.Stderr
		} else {
			writer = f
		}
	} else {
		writer = os.Stderr
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}
