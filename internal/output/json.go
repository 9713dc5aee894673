package output

import (
	"encoding/json"
	"io"

	"github.com/parley-cli/parley/internal/chat"
)

// JSONWriter outputs the full reply as indented JSON.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, reply *chat.Reply) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reply)
}
