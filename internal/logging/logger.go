// Package logging builds the structured logger used across cardkey. Callers
// get a plain *slog.Logger; rendering is done by charmbracelet/log.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
)

// New returns a logger writing to w. level is one of debug, info, warn,
// error; format is text, json or logfmt.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := clog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	opts := clog.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "cardkey",
	}

	switch strings.ToLower(format) {
	case "", "text":
		opts.Formatter = clog.TextFormatter
	case "json":
		opts.Formatter = clog.JSONFormatter
		opts.TimeFormat = time.RFC3339
	case "logfmt":
		opts.Formatter = clog.LogfmtFormatter
		opts.TimeFormat = time.RFC3339
	default:
		return nil, fmt.Errorf("invalid log format %q (want text, json or logfmt)", format)
	}

	return slog.New(clog.NewWithOptions(w, opts)), nil
}
