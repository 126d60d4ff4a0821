package ezkvlog_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstachio/ezkv"
	"github.com/jstachio/ezkv/ezkvlog"
)

func TestGetLevel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input    string
		expected slog.Level
		wantErr  bool
	}{
		"error level":    {input: "error", expected: slog.LevelError},
		"warn level":     {input: "warn", expected: slog.LevelWarn},
		"warning level":  {input: "warning", expected: slog.LevelWarn},
		"info level":     {input: "info", expected: slog.LevelInfo},
		"debug level":    {input: "debug", expected: slog.LevelDebug},
		"case insensitive": {input: "INFO", expected: slog.LevelInfo},
		"unknown level":  {input: "unknown", wantErr: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := ezkvlog.GetLevel(tc.input)
			if tc.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestGetFormat(t *testing.T) {
	t.Parallel()

	_, err := ezkvlog.GetFormat("bogus")
	require.Error(t, err)

	got, err := ezkvlog.GetFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, ezkvlog.FormatJSON, got)
}

func TestCreateHandlerWithStrings_JSON(t *testing.T) {
	var buf bytes.Buffer

	handler, err := ezkvlog.CreateHandlerWithStrings(&buf, "info", "json")
	require.NoError(t, err)

	slog.New(handler).Info("hello", "k", "v")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "hello", decoded["msg"])
	assert.Equal(t, "v", decoded["k"])
}

func TestCreateHandlerWithStrings_InvalidLevel(t *testing.T) {
	_, err := ezkvlog.CreateHandlerWithStrings(&bytes.Buffer{}, "bogus", "json")
	require.Error(t, err)
	assert.ErrorIs(t, err, ezkvlog.ErrInvalidArgument)
}

func TestSlogLogger_BridgesEzkvEvents(t *testing.T) {
	var buf bytes.Buffer

	handler, err := ezkvlog.CreateHandlerWithStrings(&buf, "debug", "logfmt")
	require.NoError(t, err)

	logger := ezkvlog.NewSlogLogger(slog.New(handler))

	var ezkvLogger ezkv.Logger = logger
	ezkvLogger.Load(ezkv.NewResource("mem:/x"))
	ezkvLogger.Missing(ezkv.NewResource("mem:/x"), ezkv.ErrResourceNotFound)

	assert.Contains(t, buf.String(), "loading resource")
	assert.Contains(t, buf.String(), "resource missing")
}
