package redis_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	redisstore "github.com/gosuda/attest/internal/store/redis"
)

func TestAuditChannel(t *testing.T) {
	t.Parallel()

	auditID := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	t.Run("happy path", func(t *testing.T) {
		t.Parallel()

		got := redisstore.AuditChannel(auditID)
		assert.Equal(t, "audit:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", got)
	})

	t.Run("nil UUID", func(t *testing.T) {
		t.Parallel()

		got := redisstore.AuditChannel(uuid.Nil)
		assert.Equal(t, "audit:00000000-0000-0000-0000-000000000000", got)
	})

	t.Run("prefix", func(t *testing.T) {
		t.Parallel()

		got := redisstore.AuditChannel(auditID)
		assert.True(t, strings.HasPrefix(got, "audit:"), "expected prefix 'audit:', got %q", got)
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()

		a := redisstore.AuditChannel(auditID)
		b := redisstore.AuditChannel(auditID)
		assert.Equal(t, a, b)
	})

	t.Run("different inputs produce different outputs", func(t *testing.T) {
		t.Parallel()

		other := uuid.MustParse("11111111-2222-3333-4444-555555555555")
		a := redisstore.AuditChannel(auditID)
		b := redisstore.AuditChannel(other)
		assert.NotEqual(t, a, b)
	})
}

func TestTrailChannel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "trail:events", redisstore.TrailChannel())
}

func TestChannelFunctions_NoCollisionAcrossTypes(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	assert.NotEqual(t, redisstore.AuditChannel(id), redisstore.TrailChannel())
}
