package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

const (
	defaultBufferDays             = 1
	defaultReclaimIntervalSeconds = 300
	defaultReclaimLookbackDays    = 30
	defaultDispatchTimeoutSeconds = 15
	defaultReservationFeeKey      = "reservation_fee"
	defaultAvailabilityTopic      = "car.available"
	defaultConsumerGroup          = "fleet-waitlist"
	defaultCacheTTL               = 300
)

// PostgresNode is one server of the read/write pair.
type PostgresNode struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"`
	Username string `envconfig:"USER"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME"`
	Timezone string `envconfig:"TIMEZONE"`
	SSLMode  string `envconfig:"SSL_MODE"`
}

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"`
		LogLevel string `envconfig:"LOG_LEVEL"`
		Port     string `envconfig:"PORT"`
		Host     string `envconfig:"HOST"`
		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name     string `envconfig:"APP_NAME"`
		Timezone string `envconfig:"TIMEZONE"`
		CORS     struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
		} `envconfig:"CORS"`
		RateLimiter struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS"`
		} `envconfig:"RATE_LIMITER"`
		APIKey string `envconfig:"API_KEY"`
	} `envconfig:"APP"`

	Rental struct {
		BufferDays             int    `envconfig:"BUFFER_DAYS"`
		ReservationFeeKey      string `envconfig:"RESERVATION_FEE_KEY"`
		ReclaimIntervalSeconds int    `envconfig:"RECLAIM_INTERVAL_SECONDS"`
		ReclaimLookbackDays    int    `envconfig:"RECLAIM_LOOKBACK_DAYS"`
		DispatchTimeoutSeconds int    `envconfig:"DISPATCH_TIMEOUT_SECONDS"`
		DisableReclaimer       bool   `envconfig:"DISABLE_RECLAIMER"`
	} `envconfig:"RENTAL"`

	Notification struct {
		SMS struct {
			GatewayURL string `envconfig:"GATEWAY_URL"`
			Token      string `envconfig:"TOKEN"`
			Sender     string `envconfig:"SENDER"`
		} `envconfig:"SMS"`
		SMTP struct {
			Host     string `envconfig:"HOST"`
			Port     string `envconfig:"PORT"`
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
			From     string `envconfig:"FROM"`
		} `envconfig:"SMTP"`
	} `envconfig:"NOTIFICATION"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
		TTL int `envconfig:"TTL"`
	} `envconfig:"CACHE"`

	JWT struct {
		AccessSecret  string `envconfig:"ACCESS_SECRET"`
		Issuer        string `envconfig:"ISSUER"`
		LeewaySeconds int    `envconfig:"LEEWAY_SECONDS"`
	} `envconfig:"JWT"`

	Kafka struct {
		Enable        bool     `envconfig:"ENABLE"`
		Brokers       []string `envconfig:"BROKERS"`
		ConsumerGroup string   `envconfig:"CONSUMER_GROUP"`
		Topics        struct {
			CarAvailable string `envconfig:"CAR_AVAILABLE"`
		} `envconfig:"TOPICS"`
		SASL struct {
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
	} `envconfig:"KAFKA"`

	DB struct {
		Postgres struct {
			MaxRetry       int          `envconfig:"MAX_RETRY"`
			RetryWaitTime  int          `envconfig:"RETRY_WAIT_TIME"`
			MigrationTable string       `envconfig:"MIGRATION_TABLE"`
			AutoMigrate    bool         `envconfig:"AUTO_MIGRATE"`
			Prefix         string       `envconfig:"PREFIX"`
			Read           PostgresNode `envconfig:"READ"`
			Write          PostgresNode `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`
		S3 struct {
			APIEndpoint     string `envconfig:"API_ENDPOINT"`
			AccessKeyID     string `envconfig:"ACCESS_KEY_ID"`
			SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY"`
			BucketName      string `envconfig:"BUCKET_NAME"`
			PublicDomain    string `envconfig:"PUBLIC_DOMAIN"`
		} `envconfig:"S3"`
	} `envconfig:"EXTERNAL"`
}

var (
	conf        Config
	once        sync.Once
	initialized bool
)

func Init() error {
	var err error

	once.Do(func() {
		err = godotenv.Load(".env")
		if err != nil {
			log.Warn().Err(err).Msg("Could not load .env file, continuing with existing environment variables")
		} else {
			log.Info().Msg("Successfully loaded variables from .env file into environment")
		}

		err = envconfig.Process("", &conf)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to process environment variables")
		}

		conf.ApplyDefaults()

		initialized = true

		log.Info().Msg("Service configuration initialized successfully")
	})

	if err != nil {
		return fmt.Errorf("loading .env file: %w", err)
	}

	return nil
}

func Get() *Config {
	if !initialized {
		if err := Init(); err != nil {
			log.Warn().Err(err).Msg("Configuration initialized without .env file")
		}
	}

	return &conf
}

// ApplyDefaults fills the rental and messaging settings that have a sensible fallback.
func (c *Config) ApplyDefaults() {
	if c.Rental.BufferDays <= 0 {
		c.Rental.BufferDays = defaultBufferDays
	}

	if c.Rental.ReservationFeeKey == "" {
		c.Rental.ReservationFeeKey = defaultReservationFeeKey
	}

	if c.Rental.ReclaimIntervalSeconds <= 0 {
		c.Rental.ReclaimIntervalSeconds = defaultReclaimIntervalSeconds
	}

	if c.Rental.ReclaimLookbackDays <= 0 {
		c.Rental.ReclaimLookbackDays = defaultReclaimLookbackDays
	}

	if c.Rental.DispatchTimeoutSeconds <= 0 {
		c.Rental.DispatchTimeoutSeconds = defaultDispatchTimeoutSeconds
	}

	if c.Kafka.Topics.CarAvailable == "" {
		c.Kafka.Topics.CarAvailable = defaultAvailabilityTopic
	}

	if c.Kafka.ConsumerGroup == "" {
		c.Kafka.ConsumerGroup = defaultConsumerGroup
	}

	if c.Cache.TTL <= 0 {
		c.Cache.TTL = defaultCacheTTL
	}
}
