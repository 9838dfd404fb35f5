package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Settings holds runtime options shared by the binaries
type Settings struct {
	Addr      string // HTTP listen address
	DBPath    string // SQLite database file
	RecordDir string // Directory for step recordings
	StaticDir string // Web client assets
	LogLevel  string
	LogFile   string // Empty means stderr
	Seed      int64  // 0 means seed from the clock
	Record    bool   // Write step recordings

	Args []string // Positional arguments left after the flags
}

// DefaultSettings returns settings populated from the environment
func DefaultSettings() Settings {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	s := Settings{
		Addr:      ":" + port,
		DBPath:    envOr("BRACE_DB", "data/game.db"),
		RecordDir: envOr("BRACE_RECORDS", "records"),
		StaticDir: envOr("BRACE_STATIC", "web/static"),
		LogLevel:  envOr("BRACE_LOG_LEVEL", "info"),
		LogFile:   os.Getenv("BRACE_LOG_FILE"),
	}
	if v := os.Getenv("BRACE_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			s.Seed = seed
		}
	}
	if v := os.Getenv("BRACE_RECORD"); v != "" {
		s.Record, _ = strconv.ParseBool(v)
	}
	return s
}

// LoadSettings parses command line flags on top of the environment defaults
func LoadSettings(name string, args []string) (Settings, error) {
	s := DefaultSettings()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&s.Addr, "addr", s.Addr, "HTTP listen address")
	fs.StringVar(&s.DBPath, "db", s.DBPath, "SQLite database path")
	fs.StringVar(&s.RecordDir, "records", s.RecordDir, "step recording directory")
	fs.StringVar(&s.StaticDir, "static", s.StaticDir, "static web assets directory")
	fs.StringVar(&s.LogLevel, "log-level", s.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&s.LogFile, "log-file", s.LogFile, "log file (default stderr)")
	fs.Int64Var(&s.Seed, "seed", s.Seed, "random seed, 0 seeds from the clock")
	fs.BoolVar(&s.Record, "record", s.Record, "record every tick to JSONL")
	if err := fs.Parse(args); err != nil {
		return Settings{}, fmt.Errorf("parse flags: %w", err)
	}
	s.Args = fs.Args()
	return s, nil
}

// NewLogger builds the logrus logger described by the settings
func (s Settings) NewLogger() (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(s.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", s.LogLevel, err)
	}
	logger.SetLevel(level)

	if s.LogFile != "" {
		f, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logger.SetOutput(f)
	}
	return logger, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
