package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// ---------------------------------------------------------------------------
// Helper function tests
// ---------------------------------------------------------------------------

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string // nil = don't set; pointer to distinguish "" from unset
		fallback string
		want     string
	}{
		{name: "returns fallback when unset", key: "ATTEST_TEST_GETENV_UNSET", setVal: nil, fallback: "default", want: "default"},
		{name: "returns env value when set", key: "ATTEST_TEST_GETENV_SET", setVal: strPtr("custom"), fallback: "default", want: "custom"},
		{name: "returns fallback when empty string", key: "ATTEST_TEST_GETENV_EMPTY", setVal: strPtr(""), fallback: "default", want: "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got := getEnv(tc.key, tc.fallback)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback int
		want     int
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "ATTEST_TEST_INT_UNSET", setVal: nil, fallback: 42, want: 42},
		{name: "parses valid int", key: "ATTEST_TEST_INT_VALID", setVal: strPtr("8080"), fallback: 0, want: 8080},
		{name: "returns fallback for empty string", key: "ATTEST_TEST_INT_EMPTY", setVal: strPtr(""), fallback: 25, want: 25},
		{name: "errors on non-numeric", key: "ATTEST_TEST_INT_NAN", setVal: strPtr("abc"), fallback: 0, wantErr: true},
		{name: "errors on float", key: "ATTEST_TEST_INT_FLOAT", setVal: strPtr("3.14"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvInt(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback time.Duration
		want     time.Duration
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "ATTEST_TEST_DUR_UNSET", setVal: nil, fallback: 5 * time.Second, want: 5 * time.Second},
		{name: "parses minutes", key: "ATTEST_TEST_DUR_MIN", setVal: strPtr("15m"), fallback: 0, want: 15 * time.Minute},
		{name: "parses composite", key: "ATTEST_TEST_DUR_COMP", setVal: strPtr("1h30m"), fallback: 0, want: 90 * time.Minute},
		{name: "errors on invalid", key: "ATTEST_TEST_DUR_INV", setVal: strPtr("notaduration"), fallback: 0, wantErr: true},
		{name: "errors on bare number", key: "ATTEST_TEST_DUR_BARE", setVal: strPtr("30"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvDuration(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvList(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback []string
		want     []string
	}{
		{name: "returns fallback when unset", key: "ATTEST_TEST_LIST_UNSET", setVal: nil, fallback: []string{"a"}, want: []string{"a"}},
		{name: "splits on comma", key: "ATTEST_TEST_LIST_SPLIT", setVal: strPtr("a,b,c"), fallback: nil, want: []string{"a", "b", "c"}},
		{name: "trims whitespace and drops empties", key: "ATTEST_TEST_LIST_TRIM", setVal: strPtr(" a , ,b "), fallback: nil, want: []string{"a", "b"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got := getEnvList(tc.key, tc.fallback)
			assert.Equal(t, tc.want, got)
		})
	}
}

// ---------------------------------------------------------------------------
// Load() error cases
// ---------------------------------------------------------------------------

func TestLoad_MissingJWTSecret(t *testing.T) {
	// All defaults apply; JWT secret is empty => must fail.
	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "ATTEST_JWT_SECRET")
}

func TestLoad_InvalidEnvVars(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		errMsg string
	}{
		{name: "DB_PORT not a number", envKey: "ATTEST_DB_PORT", envVal: "abc", errMsg: "ATTEST_DB_PORT"},
		{name: "DB_PORT zero", envKey: "ATTEST_DB_PORT", envVal: "0", errMsg: "ATTEST_DB_PORT"},
		{name: "DB_PORT too high", envKey: "ATTEST_DB_PORT", envVal: "65536", errMsg: "ATTEST_DB_PORT"},
		{name: "DB_MAX_CONNS zero", envKey: "ATTEST_DB_MAX_CONNS", envVal: "0", errMsg: "ATTEST_DB_MAX_CONNS"},
		{name: "JWT_ACCESS_TTL invalid", envKey: "ATTEST_JWT_ACCESS_TTL", envVal: "badval", errMsg: "ATTEST_JWT_ACCESS_TTL"},
		{name: "JWT_REFRESH_TTL zero", envKey: "ATTEST_JWT_REFRESH_TTL", envVal: "0s", errMsg: "ATTEST_JWT_REFRESH_TTL"},
		{name: "SERVER_READ_TIMEOUT zero", envKey: "ATTEST_SERVER_READ_TIMEOUT", envVal: "0s", errMsg: "ATTEST_SERVER_READ_TIMEOUT"},
		{name: "SERVER_WRITE_TIMEOUT invalid", envKey: "ATTEST_SERVER_WRITE_TIMEOUT", envVal: "notduration", errMsg: "ATTEST_SERVER_WRITE_TIMEOUT"},
		{name: "REDIS_DB not a number", envKey: "ATTEST_REDIS_DB", envVal: "abc", errMsg: "ATTEST_REDIS_DB"},
		{name: "SLACK token without channel", envKey: "ATTEST_SLACK_BOT_TOKEN", envVal: "xoxb-123", errMsg: "ATTEST_SLACK_CHANNEL"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Always set JWT secret so failures are from the var under test.
			t.Setenv("ATTEST_JWT_SECRET", "test-secret-for-error-cases-32ch!")
			t.Setenv(tc.envKey, tc.envVal)

			cfg, err := Load()
			require.Error(t, err, "expected error for %s=%q", tc.envKey, tc.envVal)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

// ---------------------------------------------------------------------------
// Load() happy paths
// ---------------------------------------------------------------------------

func TestLoad_Defaults(t *testing.T) {
	// Only the required JWT secret is set; everything else uses defaults.
	t.Setenv("ATTEST_JWT_SECRET", "my-dev-secret-at-least-32-chars!!")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "attest", cfg.Database.User)
	assert.Equal(t, "attest_dev", cfg.Database.DBName)
	assert.Equal(t, 25, cfg.Database.MaxConns)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.LogLevel)

	assert.False(t, cfg.SlackEnabled())
}

func TestLoad_SlackEnabled(t *testing.T) {
	t.Setenv("ATTEST_JWT_SECRET", "my-dev-secret-at-least-32-chars!!")
	t.Setenv("ATTEST_SLACK_BOT_TOKEN", "xoxb-123")
	t.Setenv("ATTEST_SLACK_CHANNEL", "#audit-workflow")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.SlackEnabled())
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "attest",
		Password: "pw",
		DBName:   "attest",
		SSLMode:  "require",
	}

	assert.Equal(t, "host=db.internal port=5433 user=attest password=pw dbname=attest sslmode=require", c.DSN())
}
