package config

import (
	"fmt"
	"os"

	"github.com/atlanticweizard/storefront/models"
	"github.com/atlanticweizard/storefront/payu"
	"github.com/atlanticweizard/storefront/utils"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Config holds all configuration for the application
type Config struct {
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	JWTSecret   string
	Port        string
	Env         string

	// BaseURL is the externally reachable address used to build the
	// gateway success/failure callback URLs.
	BaseURL string

	PayU payu.Config

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	AdminEmail    string
	AdminPassword string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// A missing .env file is fine in production where the environment is
	// set by the process manager.
	_ = godotenv.Load()

	config := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      os.Getenv("DB_PORT"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		Port:        os.Getenv("PORT"),
		Env:         os.Getenv("ENV"),
		BaseURL:     os.Getenv("BASE_URL"),
		PayU: payu.Config{
			MerchantKey:  os.Getenv("PAYU_MERCHANT_KEY"),
			MerchantSalt: os.Getenv("PAYU_MERCHANT_SALT"),
			Env:          os.Getenv("PAYU_ENV"),
		},
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      os.Getenv("SMTP_PORT"),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:      os.Getenv("SMTP_FROM"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if config.Port == "" {
		config.Port = "8080"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:" + config.Port
	}

	return config, nil
}

// DSN returns the PostgreSQL connection string. DATABASE_URL takes
// precedence over the discrete DB_* variables.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// InitDB initializes the database connection and migrates the schema
func InitDB(cfg *Config) error {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return utils.WrapError(err, "failed to connect to database")
	}

	DB = db

	err = DB.AutoMigrate(
		&models.Product{},
		&models.Admin{},
		&models.User{},
		&models.Order{},
	)
	if err != nil {
		return utils.WrapError(err, "failed to migrate database")
	}

	return nil
}
