// Package logger provides structured logging configuration and setup for the application.
package logger

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

func New(level string) zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano

	logLevel, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		logLevel = zerolog.InfoLevel
		// Use a basic logger to print this warning, as the main one isn't configured yet.
		fmt.Fprintf(os.Stderr, "Invalid log level '%s', defaulting to 'info'\n", level)
	}

	goVersion, gitRevision := buildMeta(debug.ReadBuildInfo())

	l := zerolog.New(
		zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(logLevel).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Str("go_version", goVersion).
		Str("git_revision", gitRevision).
		Logger()

	zerolog.DefaultContextLogger = &l
	return l
}

// buildMeta extracts the Go version and vcs revision from the binary's build
// info. Binaries built without module info (ok == false) report "unknown"
// for both.
func buildMeta(buildInfo *debug.BuildInfo, ok bool) (goVersion, gitRevision string) {
	goVersion, gitRevision = "unknown", "unknown"
	if !ok || buildInfo == nil {
		return
	}

	goVersion = buildInfo.GoVersion
	for _, v := range buildInfo.Settings {
		if v.Key == "vcs.revision" {
			gitRevision = v.Value
			break
		}
	}
	return
}

// For derives a component-scoped logger from the configured default.
func For(component string) zerolog.Logger {
	if zerolog.DefaultContextLogger == nil {
		l := New("info")
		zerolog.DefaultContextLogger = &l
	}
	return zerolog.DefaultContextLogger.With().Str("component", component).Logger()
}
