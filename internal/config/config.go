// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Admin       AdminConfig
	Email       EmailConfig
	AWS         AWSConfig
	Invoice     InvoiceConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

// AdminConfig holds the static credential for the admin surface. Either
// PasswordHash (bcrypt) or Password (plain, development only) must be set;
// the hash wins when both are present.
type AdminConfig struct {
	Username     string
	Password     string
	PasswordHash string
}

type EmailConfig struct {
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	FromEmail     string
	FromName      string
	OperatorEmail string
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
}

type InvoiceConfig struct {
	Dir string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "nexpoint"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24), // 24 hours
		},
		Admin: AdminConfig{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			Password:     getEnv("ADMIN_PASSWORD", ""),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Email: EmailConfig{
			SMTPHost:      getEnv("SMTP_HOST", ""),
			SMTPPort:      getEnv("SMTP_PORT", "587"),
			SMTPUsername:  getEnv("SMTP_USERNAME", ""),
			SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
			FromEmail:     getEnv("FROM_EMAIL", "noreply@nexpointdistributions.com"),
			FromName:      getEnv("FROM_NAME", "NEXPOINT"),
			OperatorEmail: getEnv("OPERATOR_EMAIL", "nexpointdistributions@outlook.com"),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "nexpoint-invoices"),
		},
		Invoice: InvoiceConfig{
			Dir: getEnv("INVOICE_DIR", "./invoices"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.JWT.SecretKey == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT secret key must be changed in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database password is required in production")
		}
		if c.Admin.PasswordHash == "" {
			return fmt.Errorf("ADMIN_PASSWORD_HASH is required in production")
		}
	}

	if c.Admin.Password == "" && c.Admin.PasswordHash == "" {
		return fmt.Errorf("either ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
