package structurecache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/edukraft/courseforge-backend/internal/domain/course"
	"github.com/edukraft/courseforge-backend/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func mkStructure(subject, level, hashKey string) *types.CourseStructure {
	now := time.Now().UTC()
	return &types.CourseStructure{
		ID:             uuid.New(),
		Subject:        subject,
		EducationLevel: level,
		StructureData:  datatypes.JSON([]byte("[]")),
		HashKey:        hashKey,
		Metadata:       datatypes.JSON([]byte("{}")),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir(), testLogger(t))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	s1 := mkStructure("cálculo", "undergraduate", "h1")
	if err := store.Insert(ctx, s1); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := store.GetByHashKey(ctx, "h1")
	if err != nil {
		t.Fatalf("GetByHashKey: %v", err)
	}
	if got == nil || got.ID != s1.ID {
		t.Fatalf("round trip lost entry: %+v", got)
	}

	miss, err := store.GetByHashKey(ctx, "absent")
	if err != nil || miss != nil {
		t.Fatalf("miss should be (nil, nil): %v %+v", err, miss)
	}
}

func TestFileStoreInsertIdempotentByHash(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir(), testLogger(t))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	first := mkStructure("química", "school", "dup")
	second := mkStructure("química orgânica", "school", "dup")
	if err := store.Insert(ctx, first); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := store.Insert(ctx, second); err != nil {
		t.Fatalf("duplicate insert must be a no-op: %v", err)
	}

	got, err := store.GetByHashKey(ctx, "dup")
	if err != nil {
		t.Fatalf("GetByHashKey: %v", err)
	}
	if got.ID != first.ID {
		t.Fatalf("duplicate insert overwrote the original entry")
	}
}

func TestFileStoreListByEducationLevel(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir(), testLogger(t))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	_ = store.Insert(ctx, mkStructure("a", "undergraduate", "la1"))
	_ = store.Insert(ctx, mkStructure("b", "undergraduate", "la2"))
	_ = store.Insert(ctx, mkStructure("c", "graduate", "la3"))

	rows, err := store.ListByEducationLevel(ctx, "undergraduate")
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListByEducationLevel: err=%v len=%d", err, len(rows))
	}
}

func TestFileStoreAtomicRewrite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir, testLogger(t))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := store.Insert(ctx, mkStructure("história", "school", "at1")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, fileStoreName)); err != nil {
		t.Fatalf("live document missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, fileStoreName+".tmp")); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind after rename: %v", err)
	}
}

func TestFileStoreDeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir(), testLogger(t))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	stale := mkStructure("antigo", "school", "old")
	stale.UpdatedAt = time.Now().UTC().Add(-72 * time.Hour)
	fresh := mkStructure("recente", "school", "new")
	_ = store.Insert(ctx, stale)
	_ = store.Insert(ctx, fresh)

	removed, err := store.DeleteOlderThan(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed %d, want 1", removed)
	}
	if got, _ := store.GetByHashKey(ctx, "old"); got != nil {
		t.Fatalf("stale entry survived eviction")
	}
	if got, _ := store.GetByHashKey(ctx, "new"); got == nil {
		t.Fatalf("fresh entry evicted")
	}
}

func TestFileStoreAppendUsage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir, testLogger(t))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	rec := &types.StructureUsage{
		ID:          uuid.New(),
		StructureID: uuid.New(),
		Reused:      true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.AppendUsage(ctx, rec); err != nil {
		t.Fatalf("AppendUsage: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, fileStoreName))
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("document empty after usage append")
	}
}
