package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/parley-cli/parley/internal/chat"
)

// TextWriter outputs the reply content followed by a short metadata footer.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, reply *chat.Reply) error {
	ew := &errWriter{w: w}

	ew.println(reply.Content)
	ew.println(strings.Repeat("─", 60))
	ew.printf("%s", sourceLine(reply))
	ew.printf("  [%s/%s, %dms]\n", reply.Provider, reply.Model, reply.DurationMs)

	return ew.err
}

func sourceLine(reply *chat.Reply) string {
	switch {
	case reply.Cached && reply.Similarity > 0:
		return fmt.Sprintf("cached (similar, %.0f%%)", reply.Similarity*100)
	case reply.Cached:
		return "cached"
	case reply.TokensUsed > 0:
		return fmt.Sprintf("%d tokens", reply.TokensUsed)
	default:
		return "fresh"
	}
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
