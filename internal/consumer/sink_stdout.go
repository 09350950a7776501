package consumer

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"

	"github.com/novafacing/catapult/internal/wire"
)

// StdoutSink writes one JSON object per line per decoded event (the default
// sink, per spec.md §1/§4.6).
type StdoutSink struct {
	mu  sync.Mutex
	w   *bufio.Writer
	enc *json.Encoder
}

// NewStdoutSink wraps w (typically os.Stdout) as a StdoutSink.
func NewStdoutSink(w io.Writer) *StdoutSink {
	bw := bufio.NewWriter(w)
	return &StdoutSink{w: bw, enc: json.NewEncoder(bw)}
}

func (s *StdoutSink) Handle(e wire.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(toJSONEvent(e)); err != nil {
		return err
	}
	return s.w.Flush()
}

func (s *StdoutSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}
