package consumer

import (
	"fmt"
	"os"
)

// NewSink builds the sink named by kind: "stdout" (default), "file:<path>",
// or "tui".
func NewSink(kind string) (Sink, error) {
	switch {
	case kind == "" || kind == "stdout":
		return NewStdoutSink(os.Stdout), nil
	case kind == "tui":
		return NewTUISink(), nil
	case len(kind) > 5 && kind[:5] == "file:":
		return NewFileSink(kind[5:])
	default:
		return nil, fmt.Errorf("consumer: unknown sink %q", kind)
	}
}
