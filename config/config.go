package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Rate rule names used by the router.
const (
	RuleDefault       = "default"
	RuleToken         = "token"
	RuleCreateUser    = "create_user"
	RuleUpdateUser    = "update_user"
	RuleCreatePost    = "create_post"
	RuleUpdatePost    = "update_post"
	RuleDeletePost    = "delete_post"
	RuleCreateComment = "create_comment"
	RuleUpdateComment = "update_comment"
	RuleDeleteComment = "delete_comment"
)

// ErrMissingSecret is returned by Load when no JWT signing secret is configured.
var ErrMissingSecret = errors.New("JWT_SECRET must be set")

// RateRule bounds requests per client and route to Times per Window.
type RateRule struct {
	Times  int
	Window time.Duration
}

// AppConfig holds environment driven configuration values.
// Sensitive data never has a default inside code and must come from config.json,
// a .env file or the environment.
type AppConfig struct {
	AppPort         string
	JWTSecret       string
	TokenTTLMinutes int
	BcryptCost      int
	AllowedOrigins  []string
	// TrustedProxies may set X-Forwarded-For; empty trusts none
	TrustedProxies []string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Database
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	// Redis backs the rate limiter
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Rate limiting
	RateLimitEnabled bool
	RateLimitBackend string
	RateLimits       map[string]RateRule
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// TokenTTL returns the lifetime of issued access tokens.
func (c AppConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// Rule returns the named rate rule, falling back to the configured default
// rule and then to the built-in limits.
func (c AppConfig) Rule(name string) RateRule {
	if r, ok := c.RateLimits[name]; ok {
		return r
	}
	if r, ok := c.RateLimits[RuleDefault]; ok {
		return r
	}
	defaults := DefaultRateLimits()
	if r, ok := defaults[name]; ok {
		return r
	}
	return defaults[RuleDefault]
}

// DefaultRateLimits mirrors the limits the public API has always enforced.
func DefaultRateLimits() map[string]RateRule {
	return map[string]RateRule{
		RuleDefault:       {Times: 1, Window: time.Second},
		RuleToken:         {Times: 5, Window: time.Minute},
		RuleCreateUser:    {Times: 5, Window: time.Hour},
		RuleUpdateUser:    {Times: 1, Window: 10 * time.Second},
		RuleCreatePost:    {Times: 5, Window: time.Minute},
		RuleUpdatePost:    {Times: 1, Window: 10 * time.Second},
		RuleDeletePost:    {Times: 5, Window: time.Minute},
		RuleCreateComment: {Times: 5, Window: time.Minute},
		RuleUpdateComment: {Times: 1, Window: 10 * time.Second},
		RuleDeleteComment: {Times: 5, Window: time.Minute},
	}
}

// Load builds the application configuration. It should be called once during boot
// and the result passed to every constructor that needs it.
//
// Precedence: config/config.json -> defaults -> .env -> environment variables.
func Load() (AppConfig, error) {
	return LoadFrom(filepath.Join("config", "config.json"), ".env")
}

// LoadFrom is Load with explicit file locations. Missing files are ignored.
func LoadFrom(jsonPath, envPath string) (AppConfig, error) {
	cfg := AppConfig{RateLimitEnabled: true}
	if err := loadJSONConfig(jsonPath, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("read %s: %w", jsonPath, err)
	}

	applyDefaults(&cfg)

	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return AppConfig{}, fmt.Errorf("load %s: %w", envPath, err)
			}
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return AppConfig{}, err
	}
	applyDriverDefaults(&cfg)

	if cfg.JWTSecret == "" {
		return AppConfig{}, ErrMissingSecret
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// loadJSONConfig reads the grouped JSON file into out if present.
// It returns an error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if s, ok := m[key].(string); ok {
			return s
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if f, ok := m[key].(float64); ok {
			return int(f)
		}
		return 0
	}
	getBool := func(m map[string]any, key string) (bool, bool) {
		b, ok := m[key].(bool)
		return b, ok
	}
	getStringSlice := func(m map[string]any, key string) []string {
		arr, ok := m[key].([]any)
		if !ok {
			return nil
		}
		res := make([]string, 0, len(arr))
		for _, it := range arr {
			if s, ok := it.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.JWTSecret = getString(app, "JWTSecret")
		out.TokenTTLMinutes = getInt(app, "TokenTTLMinutes")
		out.BcryptCost = getInt(app, "BcryptCost")
		out.AllowedOrigins = getStringSlice(app, "AllowedOrigins")
		out.TrustedProxies = getStringSlice(app, "TrustedProxies")
		out.GinMode = getString(app, "GinMode")
		out.GinPath = getString(app, "GinPath")
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DBDriver = getString(dbs, "Driver")
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
		out.DBSSLMode = getString(dbs, "SSLMode")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rds, "RedisHost")
		out.RedisPort = getInt(rds, "RedisPort")
		out.RedisDB = getInt(rds, "RedisDB")
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		out.LogLevel = getString(lg, "Level")
		out.LogPath = getString(lg, "Path")
		out.LogMaxSizeMB = getInt(lg, "MaxSizeMB")
		out.LogMaxBackups = getInt(lg, "MaxBackups")
		out.LogMaxAgeDays = getInt(lg, "MaxAgeDays")
		out.LogCompress, _ = getBool(lg, "Compress")
	}

	if rl, ok := raw["ratelimit"].(map[string]any); ok {
		if b, ok := getBool(rl, "Enabled"); ok {
			out.RateLimitEnabled = b
		}
		out.RateLimitBackend = getString(rl, "Backend")
		if rules, ok := rl["Rules"].(map[string]any); ok {
			out.RateLimits = map[string]RateRule{}
			for name, v := range rules {
				m, ok := v.(map[string]any)
				if !ok {
					continue
				}
				times, secs := getInt(m, "times"), getInt(m, "seconds")
				if times <= 0 || secs <= 0 {
					continue
				}
				out.RateLimits[name] = RateRule{Times: times, Window: time.Duration(secs) * time.Second}
			}
		}
	}

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.TokenTTLMinutes == 0 {
		c.TokenTTLMinutes = 60
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 10
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/gin.log"
	}
	if c.DBDriver == "" {
		c.DBDriver = "postgres"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBName == "" {
		c.DBName = "gram"
	}
	if c.DBSSLMode == "" {
		c.DBSSLMode = "disable"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.RateLimitBackend == "" {
		c.RateLimitBackend = "redis"
	}
	defaults := DefaultRateLimits()
	if c.RateLimits == nil {
		c.RateLimits = defaults
	} else {
		for name, rule := range defaults {
			if _, ok := c.RateLimits[name]; !ok {
				c.RateLimits[name] = rule
			}
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyDriverDefaults runs after env overrides since DB_DRIVER may change
// the driver.
func applyDriverDefaults(c *AppConfig) {
	if c.DBPort == "" {
		switch c.DBDriver {
		case "mysql":
			c.DBPort = "3306"
		default:
			c.DBPort = "5432"
		}
	}
	if c.DBUser == "" {
		if c.DBDriver == "mysql" {
			c.DBUser = "root"
		} else {
			c.DBUser = "postgres"
		}
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) error {
	var errs []error
	setInt := func(dst *int, keys ...string) {
		v := firstEnv(keys...)
		if v == "" {
			return
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid integer value %q for %s: %w", v, keys[0], err))
			return
		}
		*dst = i
	}
	setString := func(dst *string, keys ...string) {
		if v := firstEnv(keys...); v != "" {
			*dst = v
		}
	}

	setString(&c.AppPort, "APP_PORT")
	setString(&c.JWTSecret, "JWT_SECRET")
	setInt(&c.TokenTTLMinutes, "TOKEN_TTL_MINUTES")
	setInt(&c.BcryptCost, "BCRYPT_COST")
	setString(&c.GinMode, "GIN_MODE")
	setString(&c.GinPath, "GIN_PATH")
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = readListEnv("CORS_ALLOWED_ORIGINS", c.AllowedOrigins)
	}
	c.TrustedProxies = readListEnv("TRUSTED_PROXIES", c.TrustedProxies)

	setString(&c.DBDriver, "DB_DRIVER")
	setString(&c.DatabaseURI, "DATABASE_URI")
	setString(&c.DBHost, "POSTGRES_HOST", "DB_HOST")
	setString(&c.DBPort, "POSTGRES_PORT", "DB_PORT")
	setString(&c.DBUser, "POSTGRES_USER", "DB_USER")
	setString(&c.DBPassword, "POSTGRES_PASSWORD", "DB_PASSWORD")
	setString(&c.DBName, "POSTGRES_DB", "DB_NAME")
	setString(&c.DBSSLMode, "DB_SSLMODE")

	setString(&c.RedisHost, "REDIS_HOST")
	setInt(&c.RedisPort, "REDIS_PORT")
	setInt(&c.RedisDB, "REDIS_DB")
	setString(&c.RedisPassword, "REDIS_PASSWORD")

	if v := getEnv("RATE_LIMIT_ENABLED", ""); v != "" {
		c.RateLimitEnabled = v == "true" || v == "1"
	}
	setString(&c.RateLimitBackend, "RATE_LIMIT_BACKEND")

	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogPath, "LOG_PATH")
	setInt(&c.LogMaxSizeMB, "LOG_MAX_SIZE_MB")
	setInt(&c.LogMaxBackups, "LOG_MAX_BACKUPS")
	setInt(&c.LogMaxAgeDays, "LOG_MAX_AGE_DAYS")
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}

	return errors.Join(errs...)
}

func readListEnv(key string, defaults []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaults
	}
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
