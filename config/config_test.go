package config_test

import (
	"testing"
	"time"

	"dineswift-local/config"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "EVENT_BROKER", "TAX_RATE", "SYNC_WORKERS", "SYNC_PROCESSING_TIMEOUT", "OTP_TTL"} {
		t.Setenv(key, "")
	}

	settings := config.Load()

	assert.Equal(t, ":8080", settings.HTTPAddr)
	assert.Equal(t, config.BrokerKafka, settings.EventBroker)
	assert.Equal(t, "0.08", settings.TaxRate.String())
	assert.Equal(t, 4, settings.SyncWorkers)
	assert.Equal(t, 10*time.Minute, settings.SyncProcessingTimeout)
	assert.Equal(t, 30*time.Minute, settings.OTPTTL)
}

func TestLoad_Overrides(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(*testing.T, config.Settings)
	}{
		{
			name: "duration string", key: "SYNC_BASE_DELAY", value: "90s",
			check: func(t *testing.T, s config.Settings) { assert.Equal(t, 90*time.Second, s.SyncBaseDelay) },
		},
		{
			name: "duration in seconds", key: "MENU_CACHE_TTL", value: "600",
			check: func(t *testing.T, s config.Settings) { assert.Equal(t, 10*time.Minute, s.MenuCacheTTL) },
		},
		{
			name: "garbage duration keeps default", key: "REMOTE_TIMEOUT", value: "soon",
			check: func(t *testing.T, s config.Settings) { assert.Equal(t, 10*time.Second, s.RemoteTimeout) },
		},
		{
			name: "tax rate", key: "TAX_RATE", value: "0.18",
			check: func(t *testing.T, s config.Settings) { assert.Equal(t, "0.18", s.TaxRate.String()) },
		},
		{
			name: "negative tax keeps default", key: "TAX_RATE", value: "-1",
			check: func(t *testing.T, s config.Settings) { assert.Equal(t, "0.08", s.TaxRate.String()) },
		},
		{
			name: "zero workers keeps default", key: "SYNC_WORKERS", value: "0",
			check: func(t *testing.T, s config.Settings) { assert.Equal(t, 4, s.SyncWorkers) },
		},
		{
			name: "broker", key: "EVENT_BROKER", value: "rabbitmq",
			check: func(t *testing.T, s config.Settings) { assert.Equal(t, config.BrokerRabbitMQ, s.EventBroker) },
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Setenv(testCase.key, testCase.value)
			testCase.check(t, config.Load())
		})
	}
}
