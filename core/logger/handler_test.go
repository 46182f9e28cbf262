package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLine(t *testing.T, format logFormat, ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	h := newStructuredHandler(handlerConfig{
		level:    slog.LevelDebug,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	LogEvent(ctx, slog.New(h).With("component", component), level, event, attrs...)
	require.NoError(t, aw.Flush())
	require.NoError(t, aw.Close())
	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)
	return line
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithUpdateMeta(WithRID(context.Background(), "rid-123"), 42, 7, 9)
	line := captureLine(t, formatKV, ctx, "engine", slog.LevelInfo, "dispatch.handled",
		slog.String("status", "ok"),
		slog.String("action", "view"),
	)

	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=engine", "event=dispatch.handled", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "action=view"}
	require.GreaterOrEqual(t, len(tokens), len(expected), line)
	for i, prefix := range expected {
		assert.True(t, strings.HasPrefix(tokens[i], prefix), "token %d = %s, expected prefix %s", i, tokens[i], prefix)
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-json")
	line := captureLine(t, formatJSON, ctx, "notify", slog.LevelError, "notify.failed",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
		slog.String("err_code", "DELIVERY"),
	)

	require.True(t, strings.HasPrefix(line, "{"), line)
	pos := -1
	for _, pref := range []string{`{"ts":`, `"level":"ERROR"`, `"component":"notify"`, `"event":"notify.failed"`, `"status":"fail"`, `"rid":"rid-json"`, `"err":"boom"`} {
		idx := strings.Index(line, pref)
		require.Greater(t, idx, pos, "prefix %s out of order in %s", pref, line)
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	raw := "123:456:789"
	kv := captureLine(t, formatKV, WithRID(context.Background(), raw), "app", slog.LevelInfo, "rid.test")
	assert.Contains(t, kv, "rid="+CompactRID(raw))
	assert.NotContains(t, kv, "rid_full=")

	js := captureLine(t, formatJSON, WithRID(context.Background(), raw), "app", slog.LevelInfo, "rid.test")
	assert.Contains(t, js, `"rid":"`+CompactRID(raw)+`"`)
	assert.Contains(t, js, `"rid_full":"`+raw+`"`)
	assert.Contains(t, js, `"ts_unix_nano"`)
}

func TestStructuredHandlerDurationsAndEnums(t *testing.T) {
	line := captureLine(t, formatKV, context.Background(), "engine", slog.LevelInfo, "dispatch.handled",
		slog.Duration("duration", 1499*time.Microsecond),
		slog.Duration("notify_duration", 2*time.Second),
		slog.String("outcome", "bogus"),
		slog.String("status", "SKIP"),
	)
	assert.Contains(t, line, "duration_ms=1 ")
	assert.Contains(t, line, "notify_duration_ms=2000")
	assert.Contains(t, line, "status=skip")
	assert.NotContains(t, line, "outcome=")
}

func TestCompactRIDLeavesForeignInput(t *testing.T) {
	assert.Equal(t, "abc", CompactRID("abc"))
	assert.Equal(t, "1:x:3", CompactRID("1:x:3"))
	assert.Equal(t, "a.b.c", CompactRID("10:11:12"))
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	got := []bool{s.Allow(), s.Allow(), s.Allow(), s.Allow()}
	assert.Equal(t, []bool{true, false, false, true}, got)

	s.Set(0, 0)
	assert.True(t, s.Allow())

	n, d := parseRatioSpec("2/10")
	assert.Equal(t, [2]int{2, 10}, [2]int{n, d})
	n, d = parseRatioSpec("25")
	assert.Equal(t, [2]int{1, 25}, [2]int{n, d})
}

func TestSanitizeLimit(t *testing.T) {
	assert.Equal(t, "ab\tc", Sanitize("a\x00b\tc\u200b"))
	assert.Equal(t, "при", SanitizeLimit("привет", 3))
	assert.Empty(t, SanitizeLimit("x", 0))
}
