// Package logging configures the process-wide zerolog logger: a
// human-readable console writer when stderr is a terminal, structured
// JSON otherwise, matching the teacher's convention of keeping runtime
// diagnostics off the main TUI surface (debug_watcher.go writes its own
// trace file rather than polluting the rendered view).
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Setup installs the global zerolog logger. verbose raises the level to
// debug; otherwise only warnings and above are emitted, keeping a
// running dashboard's stderr quiet.
func Setup(verbose bool) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	var writer io.Writer = os.Stderr
	if term.IsTerminal(int(os.Stderr.Fd())) {
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
}
