// Package ezkvlog provides structured logging handler construction for the
// ezkv command line, bridging [log/slog] to the [ezkv.Logger] collaborator
// interface so a System's resource load/miss events end up in the same
// stream as everything else.
package ezkvlog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/jstachio/ezkv"
)

// Format represents the log output format.
type Format string

const (
	// FormatJSON outputs logs as JSON objects.
	FormatJSON Format = "json"
	// FormatLogfmt outputs logs in logfmt format.
	FormatLogfmt Format = "logfmt"
)

var (
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownLogLevel indicates an unrecognized log level string.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnknownLogFormat indicates an unrecognized log format string.
	ErrUnknownLogFormat = errors.New("unknown log format")
)

// CreateHandlerWithStrings creates a [slog.Handler] from level/format strings.
func CreateHandlerWithStrings(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	logLvl, err := GetLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	logFmt, err := GetFormat(logFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return CreateHandler(w, logLvl, logFmt), nil
}

// CreateHandler creates a [slog.Handler] with the specified level and format.
func CreateHandler(w io.Writer, logLvl slog.Level, logFmt Format) slog.Handler {
	switch logFmt {
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLvl})
	case FormatLogfmt:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLvl})
	}

	return nil
}

// GetLevel parses a log level string and returns the corresponding
// [slog.Level].
func GetLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	}

	return 0, ErrUnknownLogLevel
}

// GetFormat parses a log format string and returns the corresponding [Format].
func GetFormat(format string) (Format, error) {
	logFmt := Format(strings.ToLower(format))
	if slices.Contains([]Format{FormatJSON, FormatLogfmt}, logFmt) {
		return logFmt, nil
	}

	return "", ErrUnknownLogFormat
}

// GetAllLevelStrings returns every accepted level string, for flag help text
// and shell completion.
func GetAllLevelStrings() []string {
	return []string{"error", "warn", "info", "debug"}
}

// GetAllFormatStrings returns every accepted format string, for flag help
// text and shell completion.
func GetAllFormatStrings() []string {
	return []string{string(FormatJSON), string(FormatLogfmt)}
}

// SlogLogger adapts a [*slog.Logger] to [ezkv.Logger], so the scheduler's
// resource load/miss/warn events flow into the host application's log
// stream instead of being silently dropped.
type SlogLogger struct {
	L *slog.Logger
}

// NewSlogLogger returns an [ezkv.Logger] backed by l.
func NewSlogLogger(l *slog.Logger) SlogLogger {
	return SlogLogger{L: l}
}

func (s SlogLogger) Load(r *ezkv.Resource) {
	s.L.Debug("loading resource", "uri", r.URI)
}

func (s SlogLogger) Loaded(r *ezkv.Resource) {
	s.L.Info("loaded resource", "uri", r.URI)
}

func (s SlogLogger) Missing(r *ezkv.Resource, err error) {
	s.L.Debug("resource missing", "uri", r.URI, "error", err)
}

func (s SlogLogger) Warn(msg string) {
	s.L.Warn(msg)
}

func (s SlogLogger) Fatal(err error) {
	s.L.Error("fatal", "error", err)
}
