package output

import (
	"fmt"
	"io"
	"os"

	"github.com/parley-cli/parley/internal/chat"
)

// Writer renders a reply in a specific format.
type Writer interface {
	Write(w io.Writer, reply *chat.Reply) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReply writes the reply to the specified output (file path or stdout).
func WriteReply(reply *chat.Reply, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, reply)
}
