package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

var (
	ErrMissingPort        = errors.New("server port is required")
	ErrMissingDatabase    = errors.New("postgres write host is required")
	ErrMissingBrokers     = errors.New("at least one kafka broker is required")
	ErrInvalidOutbox      = errors.New("outbox batch size and poll interval must be positive")
	ErrInvalidSecretKey   = errors.New("secret key must be exactly 32 bytes")
	ErrInvalidPublishTry  = errors.New("kafka publish max attempts must be positive")
	ErrInvalidOutboxRetry = errors.New("outbox max attempts must be positive")
)

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV" default:"development"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
		Port     string `envconfig:"PORT" default:"8080"`
		Host     string `envconfig:"HOST"`

		// MetricsPort is where the worker process serves /metrics.
		MetricsPort string `envconfig:"METRICS_PORT" default:"9091"`

		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS" default:"5"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS" default:"5"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name     string `envconfig:"APP_NAME" default:"consultation"`
		Timezone string `envconfig:"TIMEZONE" default:"UTC"`
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
			MaxRequests   int  `envconfig:"MAX_REQUESTS" default:"100"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS" default:"60"`
		} `envconfig:"RATE_LIMITER"`
		APIKey string `envconfig:"API_KEY"`
	} `envconfig:"APP"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT" default:"6379"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
		TTL int `envconfig:"TTL" default:"300"`
	} `envconfig:"CACHE"`

	JWT struct {
		AccessSecret string `envconfig:"ACCESS_SECRET"`
	} `envconfig:"JWT"`

	DB struct {
		Postgres struct {
			MaxRetry       int    `envconfig:"MAX_RETRY" default:"3"`
			RetryWaitTime  int    `envconfig:"RETRY_WAIT_TIME" default:"2"`
			MigrationTable string `envconfig:"MIGRATION_TABLE" default:"schema_migrations"`
			AutoMigrate    bool   `envconfig:"AUTO_MIGRATE"`
			Prefix         string `envconfig:"PREFIX"`
			Read           struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT" default:"5432"`
				Username string `envconfig:"USER"`
				Password string `envconfig:"PASSWORD"`
				Name     string `envconfig:"NAME"`
				Timezone string `envconfig:"TIMEZONE"`
				SSLMode  string `envconfig:"SSL_MODE" default:"disable"`
			} `envconfig:"READ"`
			Write struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT" default:"5432"`
				Username string `envconfig:"USER"`
				Password string `envconfig:"PASSWORD"`
				Name     string `envconfig:"NAME"`
				Timezone string `envconfig:"TIMEZONE"`
				SSLMode  string `envconfig:"SSL_MODE" default:"disable"`
			} `envconfig:"WRITE"`
		} `envconfig:"POSTGRES"`
	} `envconfig:"DB"`

	Kafka struct {
		Brokers       []string `envconfig:"BROKERS"`
		ConsumerGroup string   `envconfig:"CONSUMER_GROUP" default:"APPOINTMENT"`
		SASL          struct {
			Enable   bool   `envconfig:"ENABLE"`
			Username string `envconfig:"USERNAME"`
			Password string `envconfig:"PASSWORD"`
		} `envconfig:"SASL"`
		WriteTimeout       time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`
		PublishMaxAttempts uint          `envconfig:"PUBLISH_MAX_ATTEMPTS" default:"3"`
		HandleMaxAttempts  uint          `envconfig:"HANDLE_MAX_ATTEMPTS" default:"5"`
		InitialBackoff     time.Duration `envconfig:"INITIAL_BACKOFF" default:"200ms"`
		MaxBackoff         time.Duration `envconfig:"MAX_BACKOFF" default:"2s"`
	} `envconfig:"KAFKA"`

	Events struct {
		EmailExchange        string `envconfig:"EMAIL_SERVICE_EXCHANGE" default:"EMAIL_SERVICE_EXCHANGE"`
		NotificationExchange string `envconfig:"NOTIFICAION_SERVICE_EXCHANGE" default:"NOTIFICAION_SERVICE_EXCHANGE"`
		DocumentExchange     string `envconfig:"DOCUMENT_SERVICE_EXCHANGE" default:"DOCUMENT_SERVICE_EXCHANGE"`
		LeadExchange         string `envconfig:"LEAD_SERVICE_EXCHANGE" default:"LEAD"`
		CreateRoutingKey     string `envconfig:"APPOINTMENT_CREATE_ROUTING_KEY" default:"APPOINTMENT_CREATE"`
		RescheduleRoutingKey string `envconfig:"APPOINTMENT_RESCHEDULE_ROUTING_KEY" default:"APPOINTMENT_RESCHEDULE"`
		RejectRoutingKey     string `envconfig:"APPOINTMENT_REJECT_ROUTING_KEY" default:"APPOINTMENT_REJECT"`
		PaymentExchange      string `envconfig:"PAYMENT_EXCHANGE" default:"PAYMENT"`
		PaymentSuccessKey    string `envconfig:"PAYMENT_SUCCESS_ROUTING_KEY" default:"Payment.Payment.Success"`
		PaymentConsumerQueue string `envconfig:"PAYMENT_QUEUE" default:"APPOINTMENT"`
	} `envconfig:"EVENTS"`

	Outbox struct {
		BatchSize      int           `envconfig:"BATCH_SIZE" default:"25"`
		PollInterval   time.Duration `envconfig:"POLL_INTERVAL" default:"2s"`
		MaxAttempts    int           `envconfig:"MAX_ATTEMPTS" default:"8"`
		InitialBackoff time.Duration `envconfig:"INITIAL_BACKOFF" default:"5s"`
		MaxBackoff     time.Duration `envconfig:"MAX_BACKOFF" default:"10m"`
		LeaseDuration  time.Duration `envconfig:"LEASE_DURATION" default:"1m"`
	} `envconfig:"OUTBOX"`

	Secret struct {
		Key string `envconfig:"KEY"`
	} `envconfig:"SECRET"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`
		S3 struct {
			BucketName      string `envconfig:"BUCKET_NAME"`
			PublicDomain    string `envconfig:"PUBLIC_DOMAIN"`
			APIEndpoint     string `envconfig:"API_ENDPOINT"`
			AccessKeyID     string `envconfig:"ACCESS_KEY_ID"`
			SecretAccessKey string `envconfig:"SECRET_ACCESS_KEY"`
		} `envconfig:"S3"`
		Zoom struct {
			BaseURL  string        `envconfig:"BASE_URL" default:"https://api.zoom.us/v2"`
			TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"1h"`
			Timeout  time.Duration `envconfig:"TIMEOUT" default:"15s"`
		} `envconfig:"ZOOM"`
		UserService struct {
			GRPCAddress        string        `envconfig:"GRPC_ADDRESS"`
			GRPCTimeout        time.Duration `envconfig:"GRPC_TIMEOUT" default:"5s"`
			UserInfoURL        string        `envconfig:"USER_INFO"`
			EndUserUserInfoURL string        `envconfig:"USER_INFO_FOR_ENDUSER"`
			HTTPTimeout        time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
		} `envconfig:"USER_SERVICE"`
	} `envconfig:"EXTERNAL"`
}

// Load reads .env (when present) and the process environment into a new Config.
// It is called once per process; the result is handed to components through DI.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Warn().Err(err).Msg("Could not load .env file, continuing with existing environment variables")
	} else {
		log.Info().Msg("Successfully loaded variables from .env file into environment")
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().Str("env", cfg.Server.Env).Msg("Service configuration initialized successfully")

	return cfg, nil
}

// MustLoad is Load for process entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize configuration")
	}

	return cfg
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, ErrMissingPort)
	}

	if c.DB.Postgres.Write.Host == "" {
		errs = append(errs, ErrMissingDatabase)
	}

	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, ErrMissingBrokers)
	}

	if c.Kafka.PublishMaxAttempts == 0 {
		errs = append(errs, ErrInvalidPublishTry)
	}

	if c.Outbox.BatchSize <= 0 || c.Outbox.PollInterval <= 0 {
		errs = append(errs, ErrInvalidOutbox)
	}

	if c.Outbox.MaxAttempts <= 0 {
		errs = append(errs, ErrInvalidOutboxRetry)
	}

	if c.Secret.Key != "" && len(c.Secret.Key) != 32 {
		errs = append(errs, ErrInvalidSecretKey)
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}

	return nil
}
