package app_test

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/ximsweep/internal/app"
	"github.com/vk/ximsweep/internal/ctxlog"
	"github.com/vk/ximsweep/internal/preset"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := app.NewConfig(app.Config{Mode: "weaver", ProjectRoot: "/proj"})

	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Workers)
	assert.Equal(t, "continue", cfg.FailurePolicy)
	assert.Equal(t, filepath.Join("/proj", "experiments"), cfg.ExperimentsDir)
}

func TestNewConfig_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     app.Config
		wantErr error
	}{
		{"missing mode", app.Config{}, preset.ErrUnknownMode},
		{"negative workers", app.Config{Mode: "weaver", Workers: -1}, app.ErrInvalidConfig},
		{"bad policy", app.Config{Mode: "weaver", FailurePolicy: "retry"}, app.ErrInvalidConfig},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := app.NewConfig(tc.cfg)

			require.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, cfg)
		})
	}
}

func TestNewConfig_AcceptsUnlabelledExtensions(t *testing.T) {
	cfg, err := app.NewConfig(app.Config{Mode: "weaver", LinkRate: "5Gbps", Inflate: "X3", Delay: "anything"})

	require.NoError(t, err)
	assert.Equal(t, "5Gbps", cfg.LinkRate)
	assert.Equal(t, "X3", cfg.Inflate)
}

func TestConfig_Extensions(t *testing.T) {
	testCases := []struct {
		name string
		cfg  app.Config
		want map[string]string
	}{
		{
			name: "known labels",
			cfg:  app.Config{LinkRate: "40Gbps", Delay: "10us", Inflate: "X0.50"},
			want: map[string]string{
				"link_rate":       "40Gbps",
				"link_rate_label": "40Gbps",
				"link_rate_bps":   "40000000000",
				"delay":           "10us",
				"inflate":         "X0.50",
				"inflate_label":   "X050p",
				"inflate_factor":  "20",
			},
		},
		{
			name: "unknown link rate keeps raw value and scales inflate by 1Gbps",
			cfg:  app.Config{LinkRate: "5Gbps", Inflate: "X0.25"},
			want: map[string]string{
				"link_rate":      "5Gbps",
				"inflate":        "X0.25",
				"inflate_label":  "X025p",
				"inflate_factor": "0.25",
			},
		},
		{
			name: "unknown inflate keeps raw value",
			cfg:  app.Config{Inflate: "X3"},
			want: map[string]string{"inflate": "X3"},
		},
		{
			name: "nothing given",
			cfg:  app.Config{},
			want: map[string]string{},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			var logs bytes.Buffer
			ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)))

			// --- Act ---
			ext := tc.cfg.Extensions(ctx)

			// --- Assert ---
			assert.Equal(t, tc.want, ext)
		})
	}
}

func TestConfig_Extensions_WarnsOnUnknownLabel(t *testing.T) {
	var logs bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)))
	cfg := app.Config{LinkRate: "5Gbps"}

	cfg.Extensions(ctx)

	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "link_rate=5Gbps")
}
