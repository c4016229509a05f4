// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"
	_ "time/tzdata" // zone database for minimal images

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Server
	Env                string
	Port               string
	LogLevel           string
	CORSAllowedOrigins []string
	AuthRateLimit      string

	// Database
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	SQLitePath     string
	MigrationsPath string

	// JWT
	JWTSecret     string
	JWTAccessTTL  time.Duration
	JWTRefreshTTL time.Duration

	// Uploads
	UploadBackend string
	UploadDir     string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string

	// MonthScopeByYear restricts "current month" windows to the current year.
	// When false a month number matches in any year.
	MonthScopeByYear bool
	// Location is the zone used for user-facing timestamps such as the
	// generation date printed on exports.
	Location *time.Location
}

// Upload backends.
const (
	UploadBackendLocal = "local"
	UploadBackendS3    = "s3"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("AUTH_RATE_LIMIT", "20-M")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "carteira")
	v.SetDefault("DB_PASSWORD", "carteira")
	v.SetDefault("DB_NAME", "carteira")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "carteira.db")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")

	v.SetDefault("JWT_SECRET", "fallback-secret-key-for-dev-only")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h")

	v.SetDefault("UPLOAD_BACKEND", "local")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")

	v.SetDefault("MONTH_SCOPE_BY_YEAR", false)
	v.SetDefault("TIMEZONE", "America/Sao_Paulo")
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:                v.GetString("ENV"),
		Port:               v.GetString("PORT"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		AuthRateLimit:      v.GetString("AUTH_RATE_LIMIT"),

		DBDriver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBName:         v.GetString("DB_NAME"),
		DBSSLMode:      v.GetString("DB_SSLMODE"),
		SQLitePath:     v.GetString("SQLITE_PATH"),
		MigrationsPath: v.GetString("MIGRATIONS_PATH"),

		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTAccessTTL:  parseDuration(v, "JWT_ACCESS_TTL", 15*time.Minute),
		JWTRefreshTTL: parseDuration(v, "JWT_REFRESH_TTL", 7*24*time.Hour),

		UploadBackend: strings.ToLower(v.GetString("UPLOAD_BACKEND")),
		UploadDir:     v.GetString("UPLOAD_DIR"),
		S3Bucket:      v.GetString("S3_BUCKET"),
		S3Region:      v.GetString("S3_REGION"),
		S3Endpoint:    v.GetString("S3_ENDPOINT"),
		S3AccessKey:   v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:   v.GetString("S3_SECRET_KEY"),

		MonthScopeByYear: v.GetBool("MONTH_SCOPE_BY_YEAR"),
		Location:         parseLocation(v, "TIMEZONE"),
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (use postgres or sqlite)", cfg.DBDriver)
	}

	switch cfg.UploadBackend {
	case UploadBackendLocal:
	case UploadBackendS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required when UPLOAD_BACKEND=s3")
		}
	default:
		return nil, fmt.Errorf("unsupported UPLOAD_BACKEND %q (use local or s3)", cfg.UploadBackend)
	}

	return cfg, nil
}

// PostgresDSN returns the key/value DSN used by the gorm postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// PostgresURL returns the URL form used by golang-migrate.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, fallback)
		return fallback
	}
	return d
}

func parseLocation(v *viper.Viper, key string) *time.Location {
	raw := v.GetString(key)
	loc, err := time.LoadLocation(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, time.Local)
		return time.Local
	}
	return loc
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
