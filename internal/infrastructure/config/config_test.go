package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearAFFEnv unsets every AFF_ variable for the duration of the test
func clearAFFEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, EnvPrefix+"_") {
			t.Setenv(key, "")
			require.NoError(t, os.Unsetenv(key))
		}
	}
}

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func productionEnv() map[string]string {
	return map[string]string{
		"AFF_APP_ENV":           "production",
		"AFF_JWT_SECRET":        "a-production-signing-secret-of-40-chars!",
		"AFF_DATABASE_PASSWORD": "s3cret",
		"AFF_DATABASE_SSLMODE":  "require",
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearAFFEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "affiliate-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "postgres://postgres:@localhost:5432/affiliate?sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Empty(t, cfg.Redis.Host)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodySize)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
	assert.True(t, cfg.HTTP.APIDocs)
	assert.Contains(t, cfg.HTTP.CORSAllowHeaders, "Idempotency-Key")
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "affiliate.lifecycle", cfg.Kafka.Topic)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "affiliate", cfg.Metrics.Namespace)
	assert.Equal(t, "affiliate-backend", cfg.Telemetry.ServiceName)
	assert.Equal(t, 200*time.Millisecond, cfg.Telemetry.DBSlowQueryThresh)
	assert.Equal(t, 24*time.Hour, cfg.Payout.IdempotencyTTL)
	assert.Equal(t, "idempotency:payout:", cfg.Payout.IdempotencyKeyPrefix)
	assert.Empty(t, cfg.Payment.PayPal.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Payment.Mpesa.Timeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearAFFEnv(t)
	setEnv(t, map[string]string{
		"AFF_APP_NAME":                "partners-api",
		"AFF_DATABASE_HOST":           "db.internal",
		"AFF_DATABASE_PORT":           "5433",
		"AFF_DATABASE_MAX_OPEN_CONNS": "50",
		"AFF_REDIS_HOST":              "cache.internal",
		"AFF_HTTP_CORS_ALLOW_ORIGINS": "https://partners.example.com,https://admin.example.com",
		"AFF_KAFKA_ENABLED":           "true",
		"AFF_KAFKA_BROKERS":           "kafka-1:9092,kafka-2:9092",
		"AFF_PAYOUT_IDEMPOTENCY_TTL":  "1h",
		"AFF_PAYMENT_STRIPE_BASE_URL": "https://gw.example.com/v1",
		"AFF_PAYMENT_STRIPE_API_KEY":  "sk_test",
		"AFF_PAYMENT_STRIPE_TIMEOUT":  "10s",
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "partners-api", cfg.App.Name)
	assert.Equal(t, "partners-api", cfg.Telemetry.ServiceName)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr())
	assert.Equal(t, []string{"https://partners.example.com", "https://admin.example.com"}, cfg.HTTP.CORSAllowOrigins)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, time.Hour, cfg.Payout.IdempotencyTTL)
	assert.Equal(t, GatewayConfig{BaseURL: "https://gw.example.com/v1", APIKey: "sk_test", Timeout: 10 * time.Second}, cfg.Payment.Stripe)
	assert.Empty(t, cfg.Payment.PayPal.BaseURL)
}

func TestLoadFile(t *testing.T) {
	clearAFFEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[app]
port = "9090"

[database]
max_open_conns = 10
max_idle_conns = 2

[payment.paypal]
base_url = "https://paypal.example.com"
timeout = "5s"
`), 0o600))

	t.Run("file values over defaults", func(t *testing.T) {
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, 10, cfg.Database.MaxOpenConns)
		assert.Equal(t, "https://paypal.example.com", cfg.Payment.PayPal.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.Payment.PayPal.Timeout)
		assert.Equal(t, "localhost", cfg.Database.Host)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("AFF_APP_PORT", "7070")
		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "7070", cfg.App.Port)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
		assert.Error(t, err)
	})
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want []string
	}{
		{
			name: "idle pool larger than open pool",
			env:  map[string]string{"AFF_DATABASE_MAX_OPEN_CONNS": "10", "AFF_DATABASE_MAX_IDLE_CONNS": "20"},
			want: []string{"database.max_idle_conns (20) cannot exceed database.max_open_conns (10)"},
		},
		{
			name: "non-positive open pool",
			env:  map[string]string{"AFF_DATABASE_MAX_OPEN_CONNS": "0", "AFF_DATABASE_MAX_IDLE_CONNS": "0"},
			want: []string{"database.max_open_conns must be positive"},
		},
		{
			name: "negative idle pool",
			env:  map[string]string{"AFF_DATABASE_MAX_IDLE_CONNS": "-1"},
			want: []string{"database.max_idle_conns cannot be negative"},
		},
		{
			name: "kafka without brokers",
			env:  map[string]string{"AFF_KAFKA_ENABLED": "true"},
			want: []string{"kafka.brokers is required"},
		},
		{
			name: "sampling ratio out of range",
			env:  map[string]string{"AFF_TELEMETRY_SAMPLING_RATIO": "1.5"},
			want: []string{"telemetry.sampling_ratio must be between 0.0 and 1.0"},
		},
		{
			name: "production without secrets reports every problem",
			env:  map[string]string{"AFF_APP_ENV": "production"},
			want: []string{
				"jwt.secret is required in production",
				"database.password is required in production",
				"database.sslmode cannot be 'disable' in production",
			},
		},
		{
			name: "production with a short jwt secret",
			env:  merge(productionEnv(), map[string]string{"AFF_JWT_SECRET": "short"}),
			want: []string{"jwt.secret must be at least 32 characters"},
		},
		{
			name: "production with wildcard cors",
			env:  merge(productionEnv(), map[string]string{"AFF_HTTP_CORS_ALLOW_ORIGINS": "*"}),
			want: []string{"http.cors_allow_origins cannot be '*'"},
		},
		{
			name: "production with full sql in traces",
			env:  merge(productionEnv(), map[string]string{"AFF_TELEMETRY_DB_LOG_FULL_SQL": "true"}),
			want: []string{"telemetry.db_log_full_sql must be false"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearAFFEnv(t)
			setEnv(t, tt.env)

			_, err := Load()
			require.Error(t, err)
			for _, msg := range tt.want {
				assert.Contains(t, err.Error(), msg)
			}
		})
	}

	t.Run("valid production config", func(t *testing.T) {
		clearAFFEnv(t)
		setEnv(t, productionEnv())

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})
}

func merge(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "affiliate",
		Password: "p@ss:w/rd#1",
		DBName:   "affiliate",
		SSLMode:  "verify-full",
	}

	dsn := cfg.DSN()
	assert.True(t, strings.HasPrefix(dsn, "postgres://affiliate:"), dsn)
	assert.Contains(t, dsn, "p%40ss%3Aw%2Frd%231@db.internal:5432/affiliate")
	assert.True(t, strings.HasSuffix(dsn, "?sslmode=verify-full"), dsn)
}
