package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx, logger := With(WithLogger(context.Background(), base), "run", 7)
	assert.Same(t, logger, FromContext(ctx))

	FromContext(ctx).Info("Model resolved.")
	assert.Contains(t, buf.String(), "run=7")
	assert.Contains(t, buf.String(), `msg="Model resolved."`)
}
