// Package registry holds the list of known companies and their identifiers.
package registry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

var ErrEmptyRegistry = errors.New("company registry has no entries")

// Registry is immutable after construction and safe for concurrent readers.
type Registry struct {
	entries []domain.Company
	byID    map[string]int
	index   map[string]string
}

// New indexes companies by lowercase name and lowercase ticker. Later entries
// overwrite earlier keys, and each row's tickers are indexed after its name.
func New(companies []domain.Company) *Registry {
	r := &Registry{
		entries: make([]domain.Company, 0, len(companies)),
		byID:    make(map[string]int, len(companies)),
		index:   make(map[string]string, len(companies)*2),
	}
	for _, c := range companies {
		if c.Name == "" || c.ID == "" {
			continue
		}
		if i, ok := r.byID[c.ID]; ok {
			r.entries[i] = c
		} else {
			r.byID[c.ID] = len(r.entries)
			r.entries = append(r.entries, c)
		}
		r.index[strings.ToLower(c.Name)] = c.ID
		for _, t := range c.Tickers {
			if t = strings.TrimSpace(t); t != "" {
				r.index[strings.ToLower(t)] = c.ID
			}
		}
	}
	return r
}

func (r *Registry) LookupExact(nameOrTicker string) (string, bool) {
	id, ok := r.index[strings.ToLower(nameOrTicker)]
	return id, ok
}

func (r *Registry) Entries() []domain.Company {
	return r.entries
}

func (r *Registry) Get(id string) (domain.Company, bool) {
	i, ok := r.byID[id]
	if !ok {
		return domain.Company{}, false
	}
	return r.entries[i], true
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// LoadCSV reads a company list with a header row. Required columns are
// company_name and cik; the company.* metadata columns are optional.
func LoadCSV(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer func() { _ = f.Close() }()

	r, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}
	return r, nil
}

func ReadCSV(in io.Reader) (*Registry, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyRegistry
		}
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	if _, ok := cols["company_name"]; !ok {
		return nil, fmt.Errorf("missing company_name column")
	}
	if _, ok := cols["cik"]; !ok {
		return nil, fmt.Errorf("missing cik column")
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var companies []domain.Company
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		name := field(rec, "company_name")
		if name == "" {
			continue
		}
		companies = append(companies, domain.Company{
			ID:            NormalizeCIK(field(rec, "cik")),
			Name:          name,
			TickerDisplay: field(rec, "company.ticker_display"),
			Tickers:       ParseList(field(rec, "company.tickers")),
			Exchanges:     ParseList(field(rec, "company.exchanges")),
			Description:   field(rec, "company.description"),
			Category:      field(rec, "company.category"),
			Industry:      field(rec, "company.industry"),
			SIC:           field(rec, "company.sic"),
			Website:       field(rec, "company.website"),
		})
	}

	reg := New(companies)
	if reg.Len() == 0 {
		return nil, ErrEmptyRegistry
	}
	return reg, nil
}

// NormalizeCIK strips zero padding and a trailing ".0" from numeric
// identifiers. Other values are returned trimmed.
func NormalizeCIK(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".0")
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n == 0 {
			return ""
		}
		return strconv.FormatInt(n, 10)
	}
	return s
}

// ParseList accepts "['A', 'B']", "[\"A\"]" or "A, B".
func ParseList(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.Trim(strings.TrimSpace(part), `'"`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
