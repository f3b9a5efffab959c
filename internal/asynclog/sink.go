package asynclog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Sink receives complete, newline-terminated lines from the drain worker.
// WriteLine is only ever called from that single goroutine.
type Sink interface {
	WriteLine(line string) error
	Close() error
}

// WriterSink writes lines to an io.Writer
type WriterSink struct {
	w io.Writer
}

// NewWriterSink wraps w. Closing the sink does not close w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) WriteLine(line string) error {
	_, err := io.WriteString(s.w, line)
	return err
}

func (s *WriterSink) Close() error { return nil }

// FileSink appends lines to a file
type FileSink struct {
	mu   sync.Mutex
	file *os.File
}

// OpenFileSink opens path for appending, creating parent directories
func OpenFileSink(path string) (*FileSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &FileSink{file: f}, nil
}

// Path returns the file name
func (s *FileSink) Path() string {
	return s.file.Name()
}

func (s *FileSink) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return ErrClosed
	}
	_, err := s.file.WriteString(line)
	return err
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// MultiSink fans each line out to several sinks
type MultiSink []Sink

func (m MultiSink) WriteLine(line string) error {
	var errs []error
	for _, s := range m {
		if err := s.WriteLine(line); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
