package filing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/Harshitk-cp/filinggraph/internal/domain"
)

var ErrInvalidEncoding = errors.New("document is not valid UTF-8")

// FileLoader reads a filing from disk and cleans it.
type FileLoader struct {
	// MaxBytes rejects larger files when positive.
	MaxBytes int64
}

func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

func (l *FileLoader) Load(ctx context.Context, src domain.DocumentSource) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if src.FilePath == "" {
		return "", fmt.Errorf("no file path for %s", src.URL)
	}
	if l.MaxBytes > 0 {
		info, err := os.Stat(src.FilePath)
		if err != nil {
			return "", err
		}
		if info.Size() > l.MaxBytes {
			return "", fmt.Errorf("%s is %d bytes, limit %d", src.FilePath, info.Size(), l.MaxBytes)
		}
	}

	data, err := os.ReadFile(src.FilePath)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", src.FilePath, ErrInvalidEncoding)
	}
	return CleanText(string(data)), nil
}

var _ domain.DocumentLoader = (*FileLoader)(nil)
