// Author: momentics <momentics@gmail.com>

package cliconfig

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// Logger returns the binary's logger.
func Logger() zerolog.Logger {
	return logger
}

// SetLogLevel applies a level by name; unknown names keep the current
// level. Called at startup and from config reloads.
func SetLogLevel(name string) {
	if lvl, err := zerolog.ParseLevel(name); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}
}
