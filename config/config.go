package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	Log          LogConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Consultation ConsultationConfig
}

type AppConfig struct {
	Port        string
	Env         string
	Timezone    string
	CORSOrigins []string
}

type LogConfig struct {
	Level string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// TimeZone pins the session zone so date bucketing in SQL agrees with APP_TIMEZONE.
	TimeZone string
}

// DSN returns the key/value connection string understood by the gorm postgres driver.
func (c DBConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
	// "Local" has no IANA name to send; the server default applies.
	if c.TimeZone != "" && c.TimeZone != "Local" {
		dsn += " TimeZone=" + c.TimeZone
	}
	return dsn
}

// URL returns the connection string in URL form, as golang-migrate expects it.
func (c DBConfig) URL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// ConsultationConfig holds the knobs of the consultation lifecycle.
type ConsultationConfig struct {
	AutoProvisionDoctor   bool
	StatsCacheTTL         time.Duration
	DefaultDoctorEmail    string
	DefaultDoctorName     string
	DefaultDoctorPassword string
}

// Location resolves the configured timezone used to compute "today".
func (c AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_TIMEZONE", "Local")
	viper.SetDefault("APP_CORS_ORIGINS", "*")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("JWT_ACCESS_EXPIRY", "15m")
	viper.SetDefault("JWT_REFRESH_EXPIRY", "168h")

	viper.SetDefault("CONSULTATION_AUTO_PROVISION_DOCTOR", true)
	viper.SetDefault("CONSULTATION_STATS_CACHE_TTL", "1m")
	viper.SetDefault("CONSULTATION_DEFAULT_DOCTOR_EMAIL", "doctor@default.com")
	viper.SetDefault("CONSULTATION_DEFAULT_DOCTOR_NAME", "Dr. Default Doctor")
	viper.SetDefault("CONSULTATION_DEFAULT_DOCTOR_PASSWORD", "defaultpassword")
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func LoadConfig() (*Config, error) {
	// A missing .env is fine, the process environment still applies.
	_ = godotenv.Load()

	viper.AutomaticEnv()
	setDefaults()

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	statsTTL, err := time.ParseDuration(viper.GetString("CONSULTATION_STATS_CACHE_TTL"))
	if err != nil {
		statsTTL = time.Minute
	}

	config := &Config{
		App: AppConfig{
			Port:        viper.GetString("APP_PORT"),
			Env:         viper.GetString("APP_ENV"),
			Timezone:    viper.GetString("APP_TIMEZONE"),
			CORSOrigins: splitList(viper.GetString("APP_CORS_ORIGINS")),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			TimeZone: viper.GetString("APP_TIMEZONE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Consultation: ConsultationConfig{
			AutoProvisionDoctor:   viper.GetBool("CONSULTATION_AUTO_PROVISION_DOCTOR"),
			StatsCacheTTL:         statsTTL,
			DefaultDoctorEmail:    viper.GetString("CONSULTATION_DEFAULT_DOCTOR_EMAIL"),
			DefaultDoctorName:     viper.GetString("CONSULTATION_DEFAULT_DOCTOR_NAME"),
			DefaultDoctorPassword: viper.GetString("CONSULTATION_DEFAULT_DOCTOR_PASSWORD"),
		},
	}

	if _, err := config.App.Location(); err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", config.App.Timezone, err)
	}

	return config, nil
}
