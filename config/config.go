package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/zelvyn/zelvyn-api"
)

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// OTP store backends
const (
	OTPStoreMemory   = "memory"
	OTPStoreDatabase = "database"
)

// Config is the complete server configuration
type Config struct {
	App      AppConfig      `yaml:"app" toml:"app"`
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Auth     AuthConfig     `yaml:"auth" toml:"auth"`
	Google   GoogleConfig   `yaml:"google" toml:"google"`
	SMTP     SMTPConfig     `yaml:"smtp" toml:"smtp"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

type AppConfig struct {
	Name string `yaml:"name" toml:"name"`
	Env  string `yaml:"env" toml:"env"`
}

type ServerConfig struct {
	Host        string   `yaml:"host" toml:"host"`
	Port        int      `yaml:"port" toml:"port"`
	CORSOrigins []string `yaml:"cors_origins" toml:"cors_origins"`

	ShutdownTimeout    time.Duration `yaml:"-" toml:"-"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	// DSN is a postgres:// URL or a SQLite file path
	DSN   string `yaml:"dsn" toml:"dsn"`
	Debug bool   `yaml:"debug" toml:"debug"`
}

type AuthConfig struct {
	SigningKey   string `yaml:"signing_key" toml:"signing_key"`
	Issuer       string `yaml:"issuer" toml:"issuer"`
	CookieName   string `yaml:"cookie_name" toml:"cookie_name"`
	SecureCookie *bool  `yaml:"secure_cookie" toml:"secure_cookie"`
	DefaultRole  string `yaml:"default_role" toml:"default_role"`
	UseHashID    bool   `yaml:"use_hash_id" toml:"use_hash_id"`
	PhoneRegion  string `yaml:"phone_region" toml:"phone_region"`
	OTPStore     string `yaml:"otp_store" toml:"otp_store"`

	TokenExpiration    time.Duration `yaml:"-" toml:"-"`
	TokenExpirationRaw string        `yaml:"token_expiration" toml:"token_expiration"`
	OTPTTL             time.Duration `yaml:"-" toml:"-"`
	OTPTTLRaw          string        `yaml:"otp_ttl" toml:"otp_ttl"`
}

type GoogleConfig struct {
	ClientID string `yaml:"client_id" toml:"client_id"`
	JWKSURL  string `yaml:"jwks_url" toml:"jwks_url"`
}

// SMTPConfig configures email delivery. With an empty Host emails are
// printed to the console.
type SMTPConfig struct {
	Host     string `yaml:"host" toml:"host"`
	Port     int    `yaml:"port" toml:"port"`
	Username string `yaml:"username" toml:"username"`
	Password string `yaml:"password" toml:"password"`
	From     string `yaml:"from" toml:"from"`
	FromName string `yaml:"from_name" toml:"from_name"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns a development configuration
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name: "Zelvyn",
			Env:  EnvDevelopment,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			CORSOrigins:     []string{"http://localhost:3000", "https://zelvyn.vercel.app"},
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			DSN: "file:zelvyn.db?cache=shared",
		},
		Auth: AuthConfig{
			CookieName:      auth.DefaultCookieName,
			DefaultRole:     auth.RoleCustomer,
			PhoneRegion:     "US",
			OTPStore:        OTPStoreMemory,
			TokenExpiration: auth.DefaultTokenExpiration,
			OTPTTL:          auth.DefaultOTPTTL,
		},
		SMTP: SMTPConfig{
			Port:     587,
			FromName: "Zelvyn",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML or TOML file, by extension, on top of Default. ${VAR}
// references are expanded and unset well known variables are filled from
// the environment. An empty path only applies the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := expandEnvVars(string(data))

		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			if _, err := toml.Decode(expanded, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		case ".yaml", ".yml":
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		default:
			return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
		}
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

var envPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with the variable value, or "" when unset
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envPattern.FindStringSubmatch(match)[1])
	})
}

func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"server.shutdown_timeout", cfg.Server.ShutdownTimeoutRaw, &cfg.Server.ShutdownTimeout},
		{"auth.token_expiration", cfg.Auth.TokenExpirationRaw, &cfg.Auth.TokenExpiration},
		{"auth.otp_ttl", cfg.Auth.OTPTTLRaw, &cfg.Auth.OTPTTL},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}
	return nil
}

// applyEnv fills empty settings from the deployment environment variables
func applyEnv(cfg *Config) {
	setString(&cfg.Auth.SigningKey, "JWT_SECRET")
	setString(&cfg.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&cfg.SMTP.Username, "BREVO_SMTP_USER")
	setString(&cfg.SMTP.Password, "BREVO_SMTP_PASS")
	setString(&cfg.SMTP.From, "BREVO_FROM_EMAIL")

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.DSN = dsn
	}

	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil && port > 0 {
		cfg.Server.Port = port
	}

	for _, key := range []string{"APP_ENV", "NODE_ENV"} {
		if env := os.Getenv(key); env != "" {
			cfg.App.Env = env
			break
		}
	}

	if cfg.SMTP.Host == "" && cfg.SMTP.Username != "" {
		cfg.SMTP.Host = "smtp-relay.brevo.com"
	}
}

func setString(dst *string, key string) {
	if *dst != "" {
		return
	}
	*dst = os.Getenv(key)
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.SigningKey) == "" {
		return fmt.Errorf("auth.signing_key is required (or set JWT_SECRET)")
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required (or set DATABASE_URL)")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}

	if !auth.IsValidRole(c.Auth.DefaultRole) {
		return fmt.Errorf("auth.default_role %q is not a known role", c.Auth.DefaultRole)
	}

	switch c.Auth.OTPStore {
	case OTPStoreMemory, OTPStoreDatabase:
	default:
		return fmt.Errorf("auth.otp_store must be %q or %q", OTPStoreMemory, OTPStoreDatabase)
	}

	if c.Auth.OTPTTL <= 0 {
		return fmt.Errorf("auth.otp_ttl must be positive")
	}

	if c.SMTP.Host != "" && c.SMTP.From == "" {
		return fmt.Errorf("smtp.from is required when smtp.host is set (or set BREVO_FROM_EMAIL)")
	}

	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, EnvProduction)
}

// Addr is the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// auth.Config

func (c *Config) GetSigningKey() string {
	return c.Auth.SigningKey
}

func (c *Config) GetIssuer() string {
	return c.Auth.Issuer
}

func (c *Config) GetTokenExpiration() time.Duration {
	return c.Auth.TokenExpiration
}

func (c *Config) GetOTPTTL() time.Duration {
	return c.Auth.OTPTTL
}

func (c *Config) GetCookieName() string {
	return c.Auth.CookieName
}

// GetSecureCookie defaults to true in production
func (c *Config) GetSecureCookie() bool {
	if c.Auth.SecureCookie != nil {
		return *c.Auth.SecureCookie
	}
	return c.IsProduction()
}

func (c *Config) GetDefaultRole() string {
	return c.Auth.DefaultRole
}

func (c *Config) GetUseHashID() bool {
	return c.Auth.UseHashID
}

func (c *Config) GetPhoneRegion() string {
	return c.Auth.PhoneRegion
}

var _ auth.Config = (*Config)(nil)
