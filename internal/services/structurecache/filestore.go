package structurecache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	types "github.com/edukraft/courseforge-backend/internal/domain/course"
	"github.com/edukraft/courseforge-backend/internal/pkg/logger"
)

const fileStoreName = "structures.json"

// fileDocument is the on-disk shape: one JSON document holding every cached
// structure and usage record. Loaded fully into memory and rewritten
// atomically on each mutation.
type fileDocument struct {
	Structures []*types.CourseStructure `json:"structures"`
	Usage      []*types.StructureUsage  `json:"usage"`
}

// fileStore is the fallback tier used when the relational store is
// unreachable. Same contract as the primary; a mutex serializes access to
// the shared document.
type fileStore struct {
	mu   sync.Mutex
	path string
	log  *logger.Logger
}

func NewFileStore(dir string, baseLog *logger.Logger) (StructureStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &fileStore{
		path: filepath.Join(dir, fileStoreName),
		log:  baseLog.With("store", "FileStructureStore"),
	}, nil
}

func (s *fileStore) load() (*fileDocument, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &fileDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	var doc fileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse cache file: %w", err)
	}
	return &doc, nil
}

// persist writes the whole document to a temp file and renames it over the
// live one, so readers never observe a partial write.
func (s *fileStore) persist(doc *fileDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode cache file: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

func (s *fileStore) GetByHashKey(_ context.Context, hashKey string) (*types.CourseStructure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, st := range doc.Structures {
		if st.HashKey == hashKey {
			return st, nil
		}
	}
	return nil, nil
}

func (s *fileStore) ListByEducationLevel(_ context.Context, educationLevel string) ([]*types.CourseStructure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	var out []*types.CourseStructure
	for _, st := range doc.Structures {
		if st.EducationLevel == educationLevel {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *fileStore) Insert(_ context.Context, structure *types.CourseStructure) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	for _, st := range doc.Structures {
		if st.HashKey == structure.HashKey {
			// Same idempotent-by-hash contract as the primary tier.
			return nil
		}
	}
	doc.Structures = append(doc.Structures, structure)
	return s.persist(doc)
}

func (s *fileStore) AppendUsage(_ context.Context, record *types.StructureUsage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	doc.Usage = append(doc.Usage, record)
	return s.persist(doc)
}

func (s *fileStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return 0, err
	}
	kept := doc.Structures[:0]
	var removed int64
	for _, st := range doc.Structures {
		if st.UpdatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, st)
	}
	if removed == 0 {
		return 0, nil
	}
	doc.Structures = kept
	return removed, s.persist(doc)
}

func (s *fileStore) Healthy(_ context.Context) bool { return true }
