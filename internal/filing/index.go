package filing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
	"github.com/Harshitk-cp/filinggraph/internal/registry"
)

// LoadIndex reads the filing index CSV at path.
func LoadIndex(path string) ([]domain.DocumentSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	sources, err := ReadIndex(f)
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}
	return sources, nil
}

// ReadIndex parses rows of url, file_path, cik and form. Rows without a url
// or file_path are ignored.
func ReadIndex(in io.Reader) ([]domain.DocumentSource, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{"url", "file_path"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing %s column", required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var sources []domain.DocumentSource
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		src := domain.DocumentSource{
			URL:      field(rec, "url"),
			FilePath: field(rec, "file_path"),
			FilerID:  registry.NormalizeCIK(field(rec, "cik")),
			FormType: field(rec, "form"),
		}
		if src.URL == "" || src.FilePath == "" {
			continue
		}
		sources = append(sources, src)
	}
	return sources, nil
}
