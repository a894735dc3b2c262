package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

const (
	RowPerson   = "person"
	RowCompany  = "company"
	RowRelation = "relation"
)

var csvHeader = []string{
	"url", "filer_cik", "form", "entity_type",
	"entity_name", "entity_cik", "entity2_name", "entity2_cik",
	"relationship", "confidence", "contexts",
}

// CSVSink writes flat rows: one per person, company and relationship. The
// url column drives resume.
type CSVSink struct {
	mu   sync.Mutex
	f    *os.File
	w    *csv.Writer
	seen map[string]bool
}

func OpenCSV(path string) (*CSVSink, error) {
	seen, exists, err := readCSVURLs(path)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	s := &CSVSink{f: f, w: csv.NewWriter(f), seen: seen}
	if !exists {
		if err := s.w.Write(csvHeader); err != nil {
			f.Close()
			return nil, err
		}
		s.w.Flush()
		if err := s.w.Error(); err != nil {
			f.Close()
			return nil, err
		}
	}
	return s, nil
}

func readCSVURLs(path string) (map[string]bool, bool, error) {
	seen := make(map[string]bool)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return seen, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("open output: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return seen, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read output %s: %w", path, err)
	}
	urlCol := -1
	for i, h := range header {
		if h == "url" {
			urlCol = i
		}
	}
	if urlCol < 0 {
		return nil, false, fmt.Errorf("read output %s: missing url column", path)
	}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return seen, true, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("read output %s: %w", path, err)
		}
		if urlCol < len(rec) && rec[urlCol] != "" {
			seen[rec[urlCol]] = true
		}
	}
}

// Rows flattens a result into CSV records.
func Rows(r *domain.ExtractionResult) ([][]string, error) {
	base := func(kind string) []string {
		row := make([]string, len(csvHeader))
		row[0], row[1], row[2], row[3] = r.Document.URL, r.Document.FilerID, r.Document.FormType, kind
		return row
	}
	contexts := func(c []string) (string, error) {
		if c == nil {
			c = []string{}
		}
		b, err := json.Marshal(c)
		return string(b), err
	}

	var rows [][]string
	for _, p := range r.People {
		row := base(RowPerson)
		row[4] = p.Name
		var err error
		if row[10], err = contexts(p.Contexts); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	for _, c := range r.Companies {
		row := base(RowCompany)
		row[4], row[5] = c.Name, c.ID
		var err error
		if row[10], err = contexts(c.Contexts); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	for _, rel := range r.Relationships {
		row := base(RowRelation)
		row[4], row[6] = rel.ActorName, rel.TargetName
		if rel.Actor.Kind == domain.KindCompany {
			row[5] = rel.Actor.Key
		}
		if rel.Target.Kind == domain.KindCompany {
			row[7] = rel.Target.Key
		}
		row[8], row[9] = rel.Verb, strconv.Itoa(rel.Confidence)
		var err error
		if row[10], err = contexts(rel.Contexts); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *CSVSink) Save(ctx context.Context, r *domain.ExtractionResult) error {
	rows, err := Rows(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.WriteAll(rows); err != nil {
		return err
	}
	s.seen[r.Document.URL] = true
	return nil
}

func (s *CSVSink) HasDocument(ctx context.Context, url string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[url], nil
}

func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

var (
	_ domain.ResultSink       = (*CSVSink)(nil)
	_ domain.ProcessedChecker = (*CSVSink)(nil)
)
