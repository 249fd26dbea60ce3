package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/bassista/newswatch/internal/logger"
	"github.com/go-playground/validator/v10"
)

// JSONRepository stores the baseline as a pretty-printed JSON file.
type JSONRepository struct {
	path      string
	dir       string
	base      string
	validator *validator.Validate
	mu        sync.Mutex
}

// NewJSONRepository creates a repository for the given JSON file path.
// It returns the repository interface to avoid leaking implementation details.
func NewJSONRepository(path string) (Repository, error) {
	if path == "" {
		return nil, errors.New("data file path is required")
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if dir == "" || dir == "." {
		dir = "."
	}

	return &JSONRepository{path: path, dir: dir, base: base, validator: validator.New()}, nil
}

// Load reads the baseline. A missing file is not an error: it yields an empty
// Baseline. Any other read or decode failure is returned.
func (r *JSONRepository) Load(ctx context.Context) (Baseline, error) {
	if err := ctx.Err(); err != nil {
		return Baseline{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.WithComponent("repo").Debugf("no baseline at %s, starting empty", r.path)
			return Baseline{}, nil
		}
		return Baseline{}, fmt.Errorf("open data file: %w", err)
	}
	defer file.Close()

	var b Baseline
	if err := json.NewDecoder(file).Decode(&b); err != nil {
		return Baseline{}, fmt.Errorf("decode data file: %w", err)
	}

	if !b.IsEmpty() {
		if err := r.validator.Struct(&b); err != nil {
			return Baseline{}, fmt.Errorf("validate data file: %w", err)
		}
	}
	return b, nil
}

// Save validates and writes the baseline atomically: temp file in the same
// directory, fsync, rename.
func (r *JSONRepository) Save(ctx context.Context, b Baseline) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.validator.Struct(&b); err != nil {
		return fmt.Errorf("validate before save: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveUnlocked(b)
}

// saveUnlocked writes the baseline without acquiring the lock (caller must hold it).
func (r *JSONRepository) saveUnlocked(b Baseline) error {
	payload, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(r.dir, r.base+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
	}()

	if err := tmpFile.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if _, err := tmpFile.Write(payload); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), r.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}

	logger.WithComponent("repo").Debugf("baseline saved: date=%s count=%d", b.Date, b.NewsItemCount)
	return nil
}
