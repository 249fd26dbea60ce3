package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewJSONRepository_Success(t *testing.T) {
	repo, err := NewJSONRepository("/tmp/newswatch-state.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo == nil {
		t.Error("expected repository to be created")
	}
}

func TestNewJSONRepository_EmptyPath(t *testing.T) {
	_, err := NewJSONRepository("")
	if err == nil {
		t.Error("expected error for empty path")
	}
}

func TestJSONRepository_Load_FileNotFound(t *testing.T) {
	repo, _ := NewJSONRepository(filepath.Join(t.TempDir(), "missing", "state.json"))

	b, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("missing file must not be an error, got: %v", err)
	}
	if !b.IsEmpty() {
		t.Errorf("expected empty baseline, got %+v", b)
	}
}

func TestJSONRepository_Load_Existing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte(`{"date":"2024-01","newsItemCount":3}`), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	repo, _ := NewJSONRepository(path)
	b, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if b.Date != "2024-01" || b.NewsItemCount != 3 {
		t.Errorf("unexpected baseline %+v", b)
	}
}

func TestJSONRepository_Load_EmptyObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	repo, _ := NewJSONRepository(path)
	b, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.IsEmpty() {
		t.Errorf("expected empty baseline, got %+v", b)
	}
}

func TestJSONRepository_Load_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("not valid json"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	repo, _ := NewJSONRepository(path)
	if _, err := repo.Load(context.Background()); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestJSONRepository_Load_ValidationError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte(`{"date":"2024-01","newsItemCount":-4}`), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	repo, _ := NewJSONRepository(path)
	if _, err := repo.Load(context.Background()); err == nil {
		t.Error("expected validation error for negative count")
	}
}

func TestJSONRepository_Load_ReadError(t *testing.T) {
	// A directory in place of the file is a read failure, not "absent".
	path := t.TempDir()

	repo, _ := NewJSONRepository(path)
	if _, err := repo.Load(context.Background()); err == nil {
		t.Error("expected error when the path is a directory")
	}
}

func TestJSONRepository_Load_CancelledContext(t *testing.T) {
	repo, _ := NewJSONRepository(filepath.Join(t.TempDir(), "state.json"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.Load(ctx); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestJSONRepository_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	repo, _ := NewJSONRepository(path)
	ctx := context.Background()

	if err := repo.Save(ctx, Baseline{Date: "2024-01", NewsItemCount: 5}); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	b, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if b.Date != "2024-01" || b.NewsItemCount != 5 {
		t.Errorf("unexpected baseline %+v", b)
	}
}

func TestJSONRepository_Save_PrettyPrintedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	repo, _ := NewJSONRepository(path)

	if err := repo.Save(context.Background(), Baseline{Date: "2024-01", NewsItemCount: 3}); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}
	want := "{\n  \"date\": \"2024-01\",\n  \"newsItemCount\": 3\n}"
	if string(data) != want {
		t.Errorf("unexpected file content:\n%s", data)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("saved file is not valid JSON: %v", err)
	}
}

func TestJSONRepository_Save_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	repo, _ := NewJSONRepository(path)
	ctx := context.Background()

	_ = repo.Save(ctx, Baseline{Date: "2024-01", NewsItemCount: 10})
	if err := repo.Save(ctx, Baseline{Date: "2024-02", NewsItemCount: 1}); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	b, _ := repo.Load(ctx)
	if b.Date != "2024-02" || b.NewsItemCount != 1 {
		t.Errorf("unexpected baseline %+v", b)
	}
}

func TestJSONRepository_Save_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	repo, _ := NewJSONRepository(filepath.Join(dir, "state.json"))

	if err := repo.Save(context.Background(), Baseline{Date: "2024-01", NewsItemCount: 1}); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly one file, got %d", len(entries))
	}
}

func TestJSONRepository_Save_ValidationError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	repo, _ := NewJSONRepository(path)

	tests := []struct {
		name string
		b    Baseline
	}{
		{"missing date", Baseline{NewsItemCount: 2}},
		{"negative count", Baseline{Date: "2024-01", NewsItemCount: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.Save(context.Background(), tt.b); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no file to be written on validation error")
	}
}

func TestBaseline_IsEmpty(t *testing.T) {
	if !(Baseline{}).IsEmpty() {
		t.Error("zero baseline should be empty")
	}
	if (Baseline{Date: "2024-01"}).IsEmpty() {
		t.Error("baseline with date should not be empty")
	}
}
