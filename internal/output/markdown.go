package output

import (
	"io"

	"github.com/parley-cli/parley/internal/chat"
)

// MarkdownWriter outputs the reply with a metadata footer, suitable for
// pasting into an issue or document.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, reply *chat.Reply) error {
	ew := &errWriter{w: w}

	ew.printf("%s\n\n---\n\n", reply.Content)
	ew.printf("| Agent | Provider | Model | Source | Time |\n")
	ew.printf("|-------|----------|-------|--------|------|\n")
	ew.printf("| %s | %s | %s | %s | %dms |\n",
		reply.Agent, reply.Provider, reply.Model, sourceLine(reply), reply.DurationMs)

	return ew.err
}
