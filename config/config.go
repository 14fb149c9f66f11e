package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Scheduling SchedulingConfig
	Predictor  PredictorConfig
}

type AppConfig struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
}

type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	SlotTTL  time.Duration
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// SchedulingConfig holds the booking rules applied by the appointment usecase.
type SchedulingConfig struct {
	HorizonDays                int
	SlotStrideMinutes          int
	DefaultConsultationMinutes int
	HighRiskThreshold          float64
}

type PredictorConfig struct {
	ModelPath          string
	DefaultProbability float64
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	setDefaults()

	// .env is optional, plain environment variables are enough in containers
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	slotTTL, err := time.ParseDuration(viper.GetString("SLOT_CACHE_TTL"))
	if err != nil {
		slotTTL = 5 * time.Minute
	}

	config := &Config{
		App: AppConfig{
			Port:               viper.GetString("APP_PORT"),
			Env:                viper.GetString("APP_ENV"),
			LogLevel:           viper.GetString("LOG_LEVEL"),
			CORSAllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Driver:   viper.GetString("DB_DRIVER"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
			SlotTTL:  slotTTL,
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: accessExpiry,
		},
		Scheduling: SchedulingConfig{
			HorizonDays:                viper.GetInt("BOOKING_HORIZON_DAYS"),
			SlotStrideMinutes:          viper.GetInt("SLOT_STRIDE_MINUTES"),
			DefaultConsultationMinutes: viper.GetInt("DEFAULT_CONSULTATION_MINUTES"),
			HighRiskThreshold:          viper.GetFloat64("HIGH_RISK_THRESHOLD"),
		},
		Predictor: PredictorConfig{
			ModelPath:          viper.GetString("NO_SHOW_MODEL_PATH"),
			DefaultProbability: viper.GetFloat64("NO_SHOW_DEFAULT_PROBABILITY"),
		},
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("REDIS_ENABLED", true)
	viper.SetDefault("BOOKING_HORIZON_DAYS", 90)
	viper.SetDefault("SLOT_STRIDE_MINUTES", 15)
	viper.SetDefault("DEFAULT_CONSULTATION_MINUTES", 30)
	viper.SetDefault("HIGH_RISK_THRESHOLD", 0.5)
	viper.SetDefault("NO_SHOW_DEFAULT_PROBABILITY", 0.5)
}

// splitList parses a comma separated value, dropping blanks
func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// DefaultSchedulingConfig returns the booking rules used when nothing is configured.
func DefaultSchedulingConfig() SchedulingConfig {
	return SchedulingConfig{
		HorizonDays:                90,
		SlotStrideMinutes:          15,
		DefaultConsultationMinutes: 30,
		HighRiskThreshold:          0.5,
	}
}
