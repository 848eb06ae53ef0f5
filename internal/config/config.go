// Package config loads server configuration from flags, the environment,
// a .env file and an optional YAML file.
package config

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Metadata MetadataConfig
	Store    StoreConfig
	Search   SearchConfig
	Server   ServerConfig
	Auth     AuthConfig
	Import   ImportConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string // json, pretty; empty picks by environment
}

// MetadataConfig is the directory holding the database, auth key and inbox.
type MetadataConfig struct {
	BasePath string
}

// Store backends.
const (
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// StoreConfig selects and configures the key-value medium.
type StoreConfig struct {
	Backend       string
	MaxValueBytes int
	BadgerPath    string // default {metadata}/db
	SQLitePath    string // default {metadata}/readinglist.db
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// SearchConfig configures the book search index. An empty Path keeps the
// index in memory; it is rebuilt from the store at every start either way.
type SearchConfig struct {
	Path string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// AccessTokenKey is the 32-byte PASETO key. When AUTH_ACCESS_TOKEN_KEY
	// is unset it stays nil and is loaded from {metadata}/auth.key.
	AccessTokenKey      []byte
	AccessTokenDuration time.Duration
	RateLimitPerMinute  int
	RateLimitBurst      int
}

// ImportConfig configures bulk imports and the inbox watcher.
type ImportConfig struct {
	MaxBytes    int
	InboxPath   string // default {metadata}/inbox
	WatchInbox  bool
	SettleDelay time.Duration
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load resolves every setting with precedence:
//  1. command-line flags
//  2. environment variables
//  3. the .env file (never overrides the real environment)
//  4. the YAML file named by -config or CONFIG_FILE, a flat ENV_NAME: value map
//  5. defaults
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("readinglist", flag.ContinueOnError)
	envFile := fs.String("env-file", ".env", "Path to .env file")
	configFile := fs.String("config", "", "Path to a YAML config file")

	// Every setting also gets a flag named after its variable,
	// e.g. SERVER_PORT -> -server-port.
	flagValues := make(map[string]*string, len(settings))
	for _, s := range settings {
		flagValues[s.env] = fs.String(flagName(s.env), "", s.usage)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", *envFile, err)
	}

	src := source{flags: map[string]string{}}
	fs.Visit(func(f *flag.Flag) { src.flags[f.Name] = f.Value.String() })

	path := *configFile
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		file, err := readYAML(path)
		if err != nil {
			return nil, err
		}
		src.file = file
	}

	cfg, err := src.build()
	if err != nil {
		return nil, err
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

type setting struct {
	env   string
	def   string
	usage string
}

var settings = []setting{
	{"ENV", "development", "Environment (development, staging, production)"},
	{"LOG_LEVEL", "info", "Log level (debug, info, warn, error)"},
	{"LOG_FORMAT", "", "Log format (json, pretty)"},
	{"METADATA_PATH", "", "Base path for metadata storage"},
	{"STORE_BACKEND", BackendBadger, "Store backend (badger, redis, sqlite)"},
	{"STORE_MAX_VALUE_BYTES", "5242880", "Largest value the store accepts"},
	{"STORE_BADGER_PATH", "", "Badger directory"},
	{"STORE_SQLITE_PATH", "", "SQLite database file"},
	{"STORE_REDIS_ADDR", "localhost:6379", "Redis address"},
	{"STORE_REDIS_PASSWORD", "", "Redis password"},
	{"STORE_REDIS_DB", "0", "Redis database number"},
	{"SEARCH_INDEX_PATH", "", "Directory for an on-disk search index (empty keeps it in memory)"},
	{"SERVER_NAME", "Reading List Server", "Name for the server"},
	{"SERVER_PORT", "8080", "Server port"},
	{"SERVER_READ_TIMEOUT", "15s", "HTTP read timeout"},
	{"SERVER_WRITE_TIMEOUT", "30s", "HTTP write timeout"},
	{"SERVER_IDLE_TIMEOUT", "60s", "HTTP idle timeout"},
	{"SERVER_CORS_ORIGINS", "*", "Comma-separated allowed CORS origins"},
	{"AUTH_ACCESS_TOKEN_KEY", "", "Hex PASETO key (default: generated into {metadata}/auth.key)"},
	{"AUTH_ACCESS_TOKEN_DURATION", "24h", "Access token lifetime"},
	{"AUTH_RATE_LIMIT_PER_MINUTE", "10", "Auth attempts per client per minute"},
	{"AUTH_RATE_LIMIT_BURST", "5", "Auth burst per client"},
	{"IMPORT_MAX_BYTES", "10485760", "Largest accepted import file"},
	{"IMPORT_INBOX_PATH", "", "Inbox directory watched for import files"},
	{"IMPORT_WATCH_INBOX", "true", "Watch the import inbox"},
	{"IMPORT_SETTLE_DELAY", "2s", "Quiet period before an inbox file is imported"},
}

func flagName(env string) string {
	return strings.ReplaceAll(strings.ToLower(env), "_", "-")
}

// source resolves one setting across the layers. The .env file has already
// been merged into the environment by godotenv.
type source struct {
	flags map[string]string
	file  map[string]string
	errs  []error
}

func (s *source) str(env string) string {
	if v, ok := s.flags[flagName(env)]; ok && v != "" {
		return v
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	if v := s.file[env]; v != "" {
		return v
	}
	for _, st := range settings {
		if st.env == env {
			return st.def
		}
	}
	return ""
}

func (s *source) integer(env string) int {
	v := s.str(env)
	n, err := strconv.Atoi(v)
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("invalid %s %q: not an integer", env, v))
	}
	return n
}

func (s *source) boolean(env string) bool {
	v := s.str(env)
	b, err := strconv.ParseBool(v)
	if err != nil {
		switch strings.ToLower(v) {
		case "yes", "on":
			return true
		case "no", "off":
			return false
		}
		s.errs = append(s.errs, fmt.Errorf("invalid %s %q: not a boolean", env, v))
	}
	return b
}

func (s *source) duration(env string) time.Duration {
	v := s.str(env)
	d, err := time.ParseDuration(v)
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("invalid %s %q: %w", env, v, err))
	}
	return d
}

func (s *source) key(env string) []byte {
	v := s.str(env)
	if v == "" {
		return nil
	}
	key, err := hex.DecodeString(v)
	if err != nil || len(key) != 32 {
		s.errs = append(s.errs, fmt.Errorf("invalid %s: must be 64 hex characters", env))
		return nil
	}
	return key
}

func (s *source) list(env string) []string {
	var out []string
	for _, part := range strings.Split(s.str(env), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (s *source) build() (*Config, error) {
	cfg := &Config{
		App:      AppConfig{Environment: s.str("ENV")},
		Logger:   LoggerConfig{Level: s.str("LOG_LEVEL"), Format: s.str("LOG_FORMAT")},
		Metadata: MetadataConfig{BasePath: s.str("METADATA_PATH")},
		Store: StoreConfig{
			Backend:       strings.ToLower(s.str("STORE_BACKEND")),
			MaxValueBytes: s.integer("STORE_MAX_VALUE_BYTES"),
			BadgerPath:    s.str("STORE_BADGER_PATH"),
			SQLitePath:    s.str("STORE_SQLITE_PATH"),
			RedisAddr:     s.str("STORE_REDIS_ADDR"),
			RedisPassword: s.str("STORE_REDIS_PASSWORD"),
			RedisDB:       s.integer("STORE_REDIS_DB"),
		},
		Search: SearchConfig{Path: s.str("SEARCH_INDEX_PATH")},
		Server: ServerConfig{
			Name:         s.str("SERVER_NAME"),
			Port:         s.str("SERVER_PORT"),
			ReadTimeout:  s.duration("SERVER_READ_TIMEOUT"),
			WriteTimeout: s.duration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:  s.duration("SERVER_IDLE_TIMEOUT"),
			CORSOrigins:  s.list("SERVER_CORS_ORIGINS"),
		},
		Auth: AuthConfig{
			AccessTokenKey:      s.key("AUTH_ACCESS_TOKEN_KEY"),
			AccessTokenDuration: s.duration("AUTH_ACCESS_TOKEN_DURATION"),
			RateLimitPerMinute:  s.integer("AUTH_RATE_LIMIT_PER_MINUTE"),
			RateLimitBurst:      s.integer("AUTH_RATE_LIMIT_BURST"),
		},
		Import: ImportConfig{
			MaxBytes:    s.integer("IMPORT_MAX_BYTES"),
			InboxPath:   s.str("IMPORT_INBOX_PATH"),
			WatchInbox:  s.boolean("IMPORT_WATCH_INBOX"),
			SettleDelay: s.duration("IMPORT_SETTLE_DELAY"),
		},
	}
	if len(s.errs) > 0 {
		return nil, errors.Join(s.errs...)
	}
	return cfg, nil
}

// readYAML reads a flat map of setting names to scalars.
func readYAML(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- config file path is operator supplied
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
		case []any:
			parts := make([]string, 0, len(t))
			for _, p := range t {
				parts = append(parts, fmt.Sprint(p))
			}
			out[strings.ToUpper(k)] = strings.Join(parts, ",")
		default:
			out[strings.ToUpper(k)] = fmt.Sprint(t)
		}
	}
	return out, nil
}

// Validate checks that all settings are present and in range.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Logger.Format {
	case "", "json", "pretty":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or pretty)", c.Logger.Format)
	}

	if c.Metadata.BasePath == "" {
		return errors.New("metadata base path cannot be empty after expansion")
	}

	switch c.Store.Backend {
	case BackendBadger, BackendSQLite:
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return errors.New("STORE_REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid store backend: %s (must be badger, redis, or sqlite)", c.Store.Backend)
	}
	if c.Store.MaxValueBytes <= 0 {
		return errors.New("STORE_MAX_VALUE_BYTES must be positive")
	}
	if c.Store.RedisDB < 0 {
		return errors.New("STORE_REDIS_DB cannot be negative")
	}

	if c.Server.Port == "" {
		return errors.New("SERVER_PORT is required")
	}
	if c.Auth.AccessTokenDuration <= 0 {
		return errors.New("AUTH_ACCESS_TOKEN_DURATION must be positive")
	}
	if c.Auth.RateLimitPerMinute <= 0 || c.Auth.RateLimitBurst <= 0 {
		return errors.New("auth rate limits must be positive")
	}
	if c.Import.MaxBytes <= 0 {
		return errors.New("IMPORT_MAX_BYTES must be positive")
	}
	if c.Import.SettleDelay < 0 {
		return errors.New("IMPORT_SETTLE_DELAY cannot be negative")
	}
	return nil
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// expandPath expands ~ and makes path absolute. An empty path becomes
// defaultPath.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return filepath.Clean(abs), nil
}

// expandPaths resolves the metadata directory and everything that defaults
// under it.
func (c *Config) expandPaths() error {
	base := c.Metadata.BasePath
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, "ReadingList", "metadata")
	}
	var err error
	if c.Metadata.BasePath, err = expandPath(base, ""); err != nil {
		return fmt.Errorf("invalid metadata path: %w", err)
	}

	paths := []struct {
		target *string
		def    string
	}{
		{&c.Store.BadgerPath, filepath.Join(c.Metadata.BasePath, "db")},
		{&c.Store.SQLitePath, filepath.Join(c.Metadata.BasePath, "readinglist.db")},
		{&c.Import.InboxPath, filepath.Join(c.Metadata.BasePath, "inbox")},
	}
	for _, p := range paths {
		if *p.target, err = expandPath(*p.target, p.def); err != nil {
			return err
		}
	}
	if c.Search.Path != "" {
		if c.Search.Path, err = expandPath(c.Search.Path, ""); err != nil {
			return err
		}
	}
	return nil
}
