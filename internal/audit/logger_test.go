package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
	appCtx "github.com/baechuer/real-time-ressys/services/reset-service/internal/pkg/context"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestResetSucceeded_MasksToken(t *testing.T) {
	var buf bytes.Buffer
	l := New(zerolog.New(&buf))

	ctx := appCtx.WithRequestID(context.Background(), "req-1")
	l.ResetSucceeded(ctx, "0123456789abcdefghij", "member-1", "org-1")

	m := decodeLine(t, &buf)
	assert.Equal(t, true, m["audit"])
	assert.Equal(t, "password_reset_succeeded", m["action"])
	assert.Equal(t, "0123456789...", m["token_prefix"])
	assert.Equal(t, "req-1", m["request_id"])
	assert.NotContains(t, buf.String(), "abcdefghij")
}

func TestResetFailed_IncludesCategory(t *testing.T) {
	var buf bytes.Buffer
	l := New(zerolog.New(&buf))

	l.ResetFailed(context.Background(), "tok", domain.FailureExpired)

	m := decodeLine(t, &buf)
	assert.Equal(t, "expired", m["category"])
	assert.Equal(t, "warn", m["level"])
}

func TestResetLinkRequested_MasksEmail(t *testing.T) {
	var buf bytes.Buffer
	l := New(zerolog.New(&buf))

	l.ResetLinkRequested(context.Background(), "org-1", "alice@example.com")

	m := decodeLine(t, &buf)
	assert.Equal(t, "al***@example.com", m["email"])
}

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"a@b":               "***",
		"a@example.com":     "a***@example.com",
		"bob@example.com":   "bo***@example.com",
		"alice@example.com": "al***@example.com",
	}
	for in, want := range cases {
		assert.Equal(t, want, maskEmail(in), in)
	}
}
