package holdings

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// logger is the package logger. Best-effort recoveries (missing prices,
// out-of-range fills, over-sells, resolver fallbacks) surface as warnings
// through it instead of failing the ledger.
var logger = zerolog.New(zerolog.ConsoleWriter{
	Out:        os.Stderr,
	TimeFormat: time.RFC3339,
}).With().Timestamp().Logger()

// SetLogger replaces the package logger.
func SetLogger(l zerolog.Logger) { logger = l }

// Logger returns the package logger.
func Logger() zerolog.Logger { return logger }
