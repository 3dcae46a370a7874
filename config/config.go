package config

import (
	"fmt"
	"time"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/configparser"
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Server            ServerConfig
		Database          DatabaseConfig
		RabbitMQ          RabbitMQConfig
		ExternalAPIConfig ExternalAPIConfig
		Auth              Auth
		Booking           BookingConfig
	}

	ServerConfig struct {
		Port string `env:"SERVER_PORT" default:"3000"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"pahadiraah_user"`
		Password string `env:"DATABASE_PASSWORD" default:"pahadiraah_pass"`
		Database string `env:"DATABASE_DATABASE" default:"pahadiraah_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`
	}

	RabbitMQConfig struct {
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
	}

	ExternalAPIConfig struct {
		LocationIQapiKey string `env:"LOCATIONIQ_API_KEY"`
	}

	Auth struct {
		JWTSecret string `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
	}

	BookingConfig struct {
		ServiceFeePercent int `env:"BOOKING_SERVICE_FEE_PERCENT" default:"5"`

		// A freshly signed-up user's row may land a moment after their
		// first authenticated request. Bookings retry the user lookup
		// instead of failing the request.
		UserRowAttempts int           `env:"BOOKING_USER_ROW_ATTEMPTS" default:"3"`
		UserRowDelay    time.Duration `env:"BOOKING_USER_ROW_DELAY" default:"200ms"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// PoolSettings returns the pgx pool tuning knobs.
func (c DatabaseConfig) PoolSettings() (int32, int32, time.Duration, time.Duration) {
	return c.MaxConns, c.MinConns, c.MaxConnLifetime, c.MaxConnIdleTime
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	return cfg, nil
}
