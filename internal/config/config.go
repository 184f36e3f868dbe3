package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/labsight/internal/apperr"
)

type Config struct {
	Server struct {
		Port            int           `yaml:"port" validate:"min=1,max=65535"`
		ReadTimeout     time.Duration `yaml:"readTimeout"`
		WriteTimeout    time.Duration `yaml:"writeTimeout"`
		IdleTimeout     time.Duration `yaml:"idleTimeout"`
		ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
		MaxUploadMB     int           `yaml:"maxUploadMB" validate:"min=1,max=100"`
		AllowedOrigins  []string      `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level" validate:"oneof=debug info warn error"`
	} `yaml:"log"`

	Database struct {
		Driver       string        `yaml:"driver" validate:"oneof=mysql postgres"`
		Host         string        `yaml:"host" validate:"required"`
		Port         int           `yaml:"port" validate:"min=1,max=65535"`
		User         string        `yaml:"user" validate:"required"`
		Password     string        `yaml:"password"`
		Name         string        `yaml:"name" validate:"required"`
		SSLMode      string        `yaml:"sslMode"`
		QueryTimeout time.Duration `yaml:"queryTimeout"`
		AutoMigrate  bool          `yaml:"autoMigrate"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint" validate:"required_if=Enabled true"`
		AccessKey  string `yaml:"accessKey" validate:"required_if=Enabled true"`
		SecretKey  string `yaml:"secretKey" validate:"required_if=Enabled true"`
		BucketName string `yaml:"bucketName" validate:"required_if=Enabled true"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Identity struct {
		URL     string `yaml:"url" validate:"required,url"`
		AnonKey string `yaml:"anonKey" validate:"required"`
	} `yaml:"identity"`

	AI struct {
		Provider        string        `yaml:"provider" validate:"oneof=gemini openai"`
		APIKey          string        `yaml:"apiKey" validate:"required"`
		Model           string        `yaml:"model"`
		BaseURL         string        `yaml:"baseURL" validate:"omitempty,url"`
		DocumentTimeout time.Duration `yaml:"documentTimeout"`
		TextTimeout     time.Duration `yaml:"textTimeout"`
		ChatWindow      int           `yaml:"chatWindow" validate:"min=0"`
	} `yaml:"ai"`
}

// Load baca file config, apply env overrides and defaults, then validate.
// A missing file is fine when the environment carries everything.
// Every failure is a configuration error.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, apperr.Configuration("invalid_yaml", fmt.Sprintf("cannot parse %s", path), err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, apperr.Configuration("unreadable_file", fmt.Sprintf("cannot read %s", path), err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks required settings. A missing model API key is reported
// like any other missing setting.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Configuration("invalid_config", "invalid configuration", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return apperr.Configuration("invalid_config", "invalid configuration: "+strings.Join(fields, ", "), err)
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 10
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.Port == 0 {
		if c.Database.Driver == "postgres" {
			c.Database.Port = 5432
		} else {
			c.Database.Port = 3306
		}
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.QueryTimeout == 0 {
		c.Database.QueryTimeout = 10 * time.Second
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "gemini"
	}
	if c.AI.DocumentTimeout == 0 {
		c.AI.DocumentTimeout = 90 * time.Second
	}
	if c.AI.TextTimeout == 0 {
		c.AI.TextTimeout = 45 * time.Second
	}
	// server must outlive the slowest model call
	if floor := c.AI.DocumentTimeout + 30*time.Second; c.Server.ReadTimeout < floor {
		c.Server.ReadTimeout = floor
	}
	if floor := c.AI.DocumentTimeout + 30*time.Second; c.Server.WriteTimeout < floor {
		c.Server.WriteTimeout = floor
	}
}

func (c *Config) applyEnv() error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	var bad []string
	num := func(dst *int, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				bad = append(bad, key)
				return
			}
			*dst = n
		}
	}
	flag := func(dst *bool, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				bad = append(bad, key)
				return
			}
			*dst = b
		}
	}

	num(&c.Server.Port, "PORT")
	str(&c.Log.Level, "LOG_LEVEL")

	str(&c.Database.Driver, "DATABASE_DRIVER")
	str(&c.Database.Host, "DATABASE_HOST")
	num(&c.Database.Port, "DATABASE_PORT")
	str(&c.Database.User, "DATABASE_USER")
	str(&c.Database.Password, "DATABASE_PASSWORD")
	str(&c.Database.Name, "DATABASE_NAME")
	str(&c.Database.SSLMode, "DATABASE_SSLMODE")

	flag(&c.Minio.Enabled, "MINIO_ENABLED")
	str(&c.Minio.Endpoint, "MINIO_ENDPOINT")
	str(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	str(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	str(&c.Minio.BucketName, "MINIO_BUCKET")
	str(&c.Minio.Region, "MINIO_REGION")
	flag(&c.Minio.UseSSL, "MINIO_USE_SSL")

	str(&c.Identity.URL, "SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL")
	str(&c.Identity.AnonKey, "SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY")

	str(&c.AI.Provider, "AI_PROVIDER")
	switch c.AI.Provider {
	case "openai":
		str(&c.AI.APIKey, "OPENAI_API_KEY")
	case "", "gemini":
		str(&c.AI.APIKey, "GEMINI_API_KEY")
	}
	str(&c.AI.Model, "AI_MODEL")

	if len(bad) > 0 {
		return apperr.Configuration("invalid_env", "invalid environment values: "+strings.Join(bad, ", "), nil)
	}
	return nil
}

// MaxUploadBytes is the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection URL.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: url.Values{"sslmode": {c.Database.SSLMode}}.Encode(),
	}
	return u.String()
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.Database.Driver == "postgres" {
		return c.PostgresDSN()
	}
	return c.MySQLDSN()
}
