package consumer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/novafacing/catapult/internal/wire"
)

// FileSink appends newline-delimited JSON event records to a file, fsyncing
// on Close.
type FileSink struct {
	mu  sync.Mutex
	f   *os.File
	w   *bufio.Writer
	enc *json.Encoder
}

// NewFileSink opens path for appending (creating it if necessary).
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("consumer: open sink file %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	return &FileSink{f: f, w: w, enc: json.NewEncoder(w)}, nil
}

func (s *FileSink) Handle(e wire.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(toJSONEvent(e))
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		return err
	}
	if err := s.f.Sync(); err != nil {
		return err
	}
	return s.f.Close()
}
