package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_toLevel(t *testing.T) {
	testCases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range testCases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, toLevel(in))
		})
	}
}

func Test_newLogger_JSONWithRequestID(t *testing.T) {
	// given
	var buf bytes.Buffer
	log := newLogger(&buf, config.LogConfig{Level: "info", Format: "json"})
	ctx := web.WithRequestID(context.Background(), "req-42")

	// when
	log.DebugContext(ctx, "hidden")
	log.InfoContext(ctx, "visible", "product_id", 100000)

	// then
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record), "exactly one JSON record is expected")
	assert.Equal(t, "visible", record["msg"])
	assert.Equal(t, "req-42", record["request_id"])
	assert.EqualValues(t, 100000, record["product_id"])
}

func Test_newLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, config.LogConfig{Level: "warn", Format: "text"})

	log.Info("hidden")
	log.Warn("low stock", "stock", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `msg="low stock"`)
	assert.Contains(t, out, "stock=3")
}

func Test_Migrate_InvalidURL(t *testing.T) {
	migrations := fstest.MapFS{
		"000001_init.up.sql":   {Data: []byte("SELECT 1;")},
		"000001_init.down.sql": {Data: []byte("SELECT 1;")},
	}

	err := Migrate("unknown://localhost/db", migrations, slog.New(slog.DiscardHandler))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create migrator")
}
