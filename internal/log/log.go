// Package log configures the process-wide apex logger.
package log

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
)

// Init installs the parley log handler and sets the level from the
// PARLEY_LOG env variable (debug, info, warn, error; default error).
func Init() {
	level := strings.ToLower(os.Getenv("PARLEY_LOG"))
	if level == "" {
		level = "error"
	}
	log.SetHandler(&handler{})
	log.SetLevelFromString(level)
}

// handler writes "timestamp L message key=value ..." lines to stderr so
// command output on stdout stays machine-readable.
type handler struct{}

// HandleLog implements log.Handler.
func (h *handler) HandleLog(e *log.Entry) error {
	ts := time.Now().Format("2006-01-02 15:04:05")
	level := strings.ToUpper(e.Level.String())
	fmt.Fprintf(os.Stderr, "%s %.1s %s", ts, level, e.Message)
	for _, f := range e.Fields.Names() {
		fmt.Fprintf(os.Stderr, " %s=%v", f, e.Fields.Get(f))
	}
	fmt.Fprintln(os.Stderr)
	return nil
}
