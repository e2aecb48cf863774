// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	"time"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
)

const (
	FormatPlain = "plain"
	FormatJSON  = "json"
)

// New returns a zerolog-backed logger writing to w at the given level.
func New(w io.Writer, level, format string) (log.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	opts := []log.Option{log.LevelOption(lvl), log.TimeFormatOption(time.RFC3339)}
	switch format {
	case FormatJSON:
		opts = append(opts, log.OutputJSONOption())
	case FormatPlain, "":
		opts = append(opts, log.ColorOption(false))
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return log.NewLogger(w, opts...), nil
}
