package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromContext_ReturnsEmbeddedLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, nil))

	ctx := WithLogger(context.Background(), logger)
	FromContext(ctx).Info("hello", "run", "xim_000")

	require.Same(t, logger, FromContext(ctx))
	require.Contains(t, buf.String(), "run=xim_000")
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	require.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestWith_ScopesLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithLogger(context.Background(), slog.New(slog.NewTextHandler(buf, nil)))

	scoped, logger := With(ctx, "run", "xim_007")
	FromContext(scoped).Info("staged")

	require.Same(t, logger, FromContext(scoped))
	require.Contains(t, buf.String(), "run=xim_007")
	require.NotSame(t, logger, FromContext(ctx))
}
