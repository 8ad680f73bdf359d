package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "json").With("service", "pos")

	ctx := IntoContext(context.Background(), l)
	FromContext(ctx).Info("order_created", "order_id", "o-1")
	FromContext(ctx).Debug("dropped")

	assert.Contains(t, buf.String(), `"msg":"order_created"`)
	assert.Contains(t, buf.String(), `"service":"pos"`)
	assert.NotContains(t, buf.String(), "dropped")
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
}
