package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// minSecretLen is the shortest HS512 secret accepted outside of sqlite development setups.
const minSecretLen = 32

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	JWT       JWTConfig       `koanf:"jwt"`
	Log       LogConfig       `koanf:"log"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
}

type ServerConfig struct {
	Port            string        `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver         string `koanf:"driver"`
	DSN            string `koanf:"dsn"`
	ConnectRetries uint64 `koanf:"connect_retries"`
}

type JWTConfig struct {
	Secret       string `koanf:"secret"`
	ExpirationMs int64  `koanf:"expiration_ms"`
}

// Expiration converts the configured millisecond lifetime to a duration.
func (c JWTConfig) Expiration() time.Duration {
	return time.Duration(c.ExpirationMs) * time.Millisecond
}

type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type RateLimitConfig struct {
	AuthPerMinute int `koanf:"auth_per_minute"`
	AuthBurst     int `koanf:"auth_burst"`
}

var defaults = map[string]any{
	"server.port":               "8080",
	"server.shutdown_timeout":   "10s",
	"database.driver":           DriverSQLite,
	"database.dsn":              "blog.db",
	"database.connect_retries":  5,
	"jwt.expiration_ms":         int64(86400000),
	"log.format":                "json",
	"log.level":                 "info",
	"cors.allowed_origins":      []string{"http://localhost:3000"},
	"ratelimit.auth_per_minute": 20,
	"ratelimit.auth_burst":      10,
}

// envKeys maps environment variables onto config keys.
var envKeys = map[string]string{
	"PORT":                 "server.port",
	"DB_DRIVER":            "database.driver",
	"DATABASE_URL":         "database.dsn",
	"JWT_SECRET":           "jwt.secret",
	"JWT_EXPIRATION_MS":    "jwt.expiration_ms",
	"LOG_FORMAT":           "log.format",
	"LOG_LEVEL":            "log.level",
	"CORS_ALLOWED_ORIGINS": "cors.allowed_origins",
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"port":          "server.port",
	"db-driver":     "database.driver",
	"database-url":  "database.dsn",
	"jwt-secret":    "jwt.secret",
	"log-format":    "log.format",
	"log-level":     "log.level",
	"jwt-expire-ms": "jwt.expiration_ms",
}

// RegisterFlags adds the flags understood by Load to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a YAML config file")
	fs.String("port", "", "HTTP listen port")
	fs.String("db-driver", "", "database driver (postgres or sqlite)")
	fs.String("database-url", "", "database DSN or postgres:// URL")
	fs.String("jwt-secret", "", "HMAC secret used to sign session tokens")
	fs.Int64("jwt-expire-ms", 0, "session token lifetime in milliseconds")
	fs.String("log-format", "", "log format (json or text)")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
}

// Load builds the process configuration. Later sources win:
// defaults, YAML file, .env and environment, then flags that were set explicitly.
func Load(fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, oops.In("config").With("key", key).Wrap(err)
		}
	}

	if fs != nil {
		if path, _ := fs.GetString("config"); path != "" {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, oops.In("config").With("path", path).Wrapf(err, "load config file")
			}
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, oops.In("config").Wrapf(err, "load .env")
	}
	for env, key := range envKeys {
		v, ok := os.LookupEnv(env)
		if !ok || v == "" {
			continue
		}
		var val any = v
		if key == "cors.allowed_origins" {
			val = splitList(v)
		}
		if err := k.Set(key, val); err != nil {
			return nil, oops.In("config").With("env", env).Wrap(err)
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.In("config").Wrapf(err, "load flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.In("config").Wrapf(err, "decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	var missing []string
	if c.JWT.Secret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Database.DSN == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return oops.In("config").With("missing", missing).Errorf("required settings are not set: %v", missing)
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if len(c.JWT.Secret) < minSecretLen {
			return oops.In("config").Errorf("jwt secret must be at least %d bytes", minSecretLen)
		}
	case DriverSQLite:
	default:
		return oops.In("config").With("driver", c.Database.Driver).Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.JWT.ExpirationMs <= 0 {
		return oops.In("config").With("expiration_ms", c.JWT.ExpirationMs).Errorf("jwt expiration must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
