// Package logging builds the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Output formats accepted by New.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New returns a logger writing to w (stdout when nil).
//
// The level parameter can be one of: trace, debug, info, warn, error, fatal.
func New(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if w == nil {
		w = os.Stdout
	}
	switch format {
	case FormatJSON, "":
	case FormatConsole:
		console := zerolog.NewConsoleWriter()
		console.TimeFormat = time.DateTime
		console.Out = w
		w = console
	default:
		return zerolog.Logger{}, fmt.Errorf("unknown log format: %s", format)
	}

	return zerolog.New(w).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger().
		Level(lvl), nil
}
