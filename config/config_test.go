package config_test

import (
	"testing"
	"time"

	"consultation/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("DB_POSTGRES_WRITE_HOST", "localhost")
	t.Setenv("KAFKA_BROKERS", "localhost:9092,localhost:9093")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"localhost:9092", "localhost:9093"}, cfg.Kafka.Brokers)
	assert.Equal(t, "EMAIL_SERVICE_EXCHANGE", cfg.Events.EmailExchange)
	assert.Equal(t, "NOTIFICAION_SERVICE_EXCHANGE", cfg.Events.NotificationExchange)
	assert.Equal(t, "APPOINTMENT_CREATE", cfg.Events.CreateRoutingKey)
	assert.Equal(t, "Payment.Payment.Success", cfg.Events.PaymentSuccessKey)
	assert.Equal(t, 25, cfg.Outbox.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.Outbox.PollInterval)
	assert.Equal(t, uint(3), cfg.Kafka.PublishMaxAttempts)
	assert.Equal(t, "https://api.zoom.us/v2", cfg.External.Zoom.BaseURL)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("OUTBOX_MAX_ATTEMPTS", "3")
	t.Setenv("EVENTS_APPOINTMENT_REJECT_ROUTING_KEY", "Consultation.Booking.Rejected")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Outbox.MaxAttempts)
	assert.Equal(t, "Consultation.Booking.Rejected", cfg.Events.RejectRoutingKey)
}

func TestLoad_MissingEssentials(t *testing.T) {
	t.Setenv("DB_POSTGRES_WRITE_HOST", "")
	t.Setenv("KAFKA_BROKERS", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingDatabase)
	assert.ErrorIs(t, err, config.ErrMissingBrokers)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *config.Config {
		cfg := &config.Config{}
		cfg.Server.Port = "8080"
		cfg.DB.Postgres.Write.Host = "db"
		cfg.Kafka.Brokers = []string{"kafka:9092"}
		cfg.Kafka.PublishMaxAttempts = 3
		cfg.Outbox.BatchSize = 10
		cfg.Outbox.PollInterval = time.Second
		cfg.Outbox.MaxAttempts = 5

		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(cfg *config.Config)
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(_ *config.Config) {},
		},
		{
			name:    "zero batch size",
			mutate:  func(cfg *config.Config) { cfg.Outbox.BatchSize = 0 },
			wantErr: config.ErrInvalidOutbox,
		},
		{
			name:    "short secret key",
			mutate:  func(cfg *config.Config) { cfg.Secret.Key = "too-short" },
			wantErr: config.ErrInvalidSecretKey,
		},
		{
			name:    "no publish attempts",
			mutate:  func(cfg *config.Config) { cfg.Kafka.PublishMaxAttempts = 0 },
			wantErr: config.ErrInvalidPublishTry,
		},
		{
			name:    "missing port",
			mutate:  func(cfg *config.Config) { cfg.Server.Port = "" },
			wantErr: config.ErrMissingPort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
