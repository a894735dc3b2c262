package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

// JSONLSink appends one extraction result per line. Documents already in the
// file when it is opened count as processed.
type JSONLSink struct {
	mu   sync.Mutex
	f    *os.File
	w    *bufio.Writer
	seen map[string]bool
}

// OpenJSONL opens path for appending, creating it if needed.
func OpenJSONL(path string) (*JSONLSink, error) {
	seen, err := readJSONLURLs(path)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return &JSONLSink{f: f, w: bufio.NewWriter(f), seen: seen}, nil
}

func readJSONLURLs(path string) (map[string]bool, error) {
	seen := make(map[string]bool)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return seen, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(bufio.NewReader(f))
	for line := 1; ; line++ {
		var rec struct {
			Document struct {
				URL string `json:"url"`
			} `json:"document"`
		}
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return seen, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read output %s record %d: %w", path, line, err)
		}
		if rec.Document.URL != "" {
			seen[rec.Document.URL] = true
		}
	}
}

func (s *JSONLSink) Save(ctx context.Context, r *domain.ExtractionResult) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(append(data, '\n')); err != nil {
		return err
	}
	if err := s.w.Flush(); err != nil {
		return err
	}
	s.seen[r.Document.URL] = true
	return nil
}

func (s *JSONLSink) HasDocument(ctx context.Context, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[url], nil
}

func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

var (
	_ domain.ResultSink       = (*JSONLSink)(nil)
	_ domain.ProcessedChecker = (*JSONLSink)(nil)
)
