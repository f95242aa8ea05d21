package structurecache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"

	types "github.com/edukraft/courseforge-backend/internal/domain/course"
	"github.com/edukraft/courseforge-backend/internal/pkg/envutil"
	"github.com/edukraft/courseforge-backend/internal/pkg/logger"
	"github.com/edukraft/courseforge-backend/internal/syllabus"
)

// DefaultFuzzyThreshold is the similarity score a stored subject must exceed
// for a fuzzy cache hit. Directly controls false-positive reuse; override
// with STRUCTURE_FUZZY_THRESHOLD.
const DefaultFuzzyThreshold = 0.8

// SaveInput carries everything needed to persist a freshly generated
// structure. TotalModules/TotalTopics are always recomputed from Modules,
// never trusted from the caller.
type SaveInput struct {
	Subject        string
	EducationLevel string
	Title          string
	Description    string
	CourseLevel    string
	Modules        []types.Module
	Metadata       map[string]any
}

// GenerateFunc produces a structure when the cache cannot serve one.
type GenerateFunc func(ctx context.Context) (SaveInput, error)

type CacheService interface {
	// FindExisting returns a cached structure for (subject, level), first by
	// exact hash, then by fuzzy subject similarity. A miss is (nil, nil).
	FindExisting(ctx context.Context, subject, educationLevel string) (*types.CourseStructure, error)
	// Save persists a structure idempotently by hash key. The bool reports
	// whether a new entry was created.
	Save(ctx context.Context, in SaveInput) (*types.CourseStructure, bool, error)
	// RecordUsage appends a usage row. Best-effort: failures are logged and
	// swallowed, never surfaced to the caller.
	RecordUsage(ctx context.Context, structureID uuid.UUID, reused bool, userIdentifier string)
	// GetOrGenerate serves from cache or runs generate exactly once per hash
	// key under concurrent callers. The bool reports a cache hit.
	GetOrGenerate(ctx context.Context, subject, educationLevel string, generate GenerateFunc) (*types.CourseStructure, bool, error)
	// CleanupOlderThan evicts structures not updated within maxAge.
	CleanupOlderThan(ctx context.Context, maxAge time.Duration) (int64, error)
}

type cacheService struct {
	log      *logger.Logger
	primary  StructureStore
	fallback StructureStore

	fuzzyThreshold float64
	flight         singleflight.Group
}

func NewCacheService(baseLog *logger.Logger, primary, fallback StructureStore) CacheService {
	return &cacheService{
		log:            baseLog.With("service", "StructureCacheService"),
		primary:        primary,
		fallback:       fallback,
		fuzzyThreshold: envutil.Float("STRUCTURE_FUZZY_THRESHOLD", DefaultFuzzyThreshold),
	}
}

// tier returns the store to use for this call. The fallback takes over when
// the primary is missing or fails its health probe.
func (s *cacheService) tier(ctx context.Context) StructureStore {
	if s.primary != nil && s.primary.Healthy(ctx) {
		return s.primary
	}
	if s.fallback == nil {
		return s.primary
	}
	return s.fallback
}

// failover retries op against the fallback tier when the primary errors.
func failover[T any](s *cacheService, ctx context.Context, op func(StructureStore) (T, error)) (T, error) {
	store := s.tier(ctx)
	out, err := op(store)
	if err == nil || store == s.fallback || s.fallback == nil {
		return out, err
	}
	s.log.Warn("primary structure store failed, falling back to file tier", "error", err)
	return op(s.fallback)
}

func (s *cacheService) FindExisting(ctx context.Context, subject, educationLevel string) (*types.CourseStructure, error) {
	normalized := NormalizeSubject(subject)
	if normalized == "" {
		return nil, nil
	}
	hashKey := HashKey(subject, educationLevel)

	exact, err := failover(s, ctx, func(st StructureStore) (*types.CourseStructure, error) {
		return st.GetByHashKey(ctx, hashKey)
	})
	if err != nil {
		return nil, fmt.Errorf("exact cache lookup: %w", err)
	}
	if exact != nil {
		s.log.Debug("structure cache exact hit", "hash_key", hashKey)
		return exact, nil
	}

	candidates, err := failover(s, ctx, func(st StructureStore) ([]*types.CourseStructure, error) {
		return st.ListByEducationLevel(ctx, educationLevel)
	})
	if err != nil {
		return nil, fmt.Errorf("fuzzy cache scan: %w", err)
	}
	for _, c := range candidates {
		score := syllabus.TokenSimilarity(normalized, c.Subject)
		if score > s.fuzzyThreshold {
			s.log.Debug("structure cache fuzzy hit",
				"subject", normalized, "matched_subject", c.Subject, "score", score)
			return c, nil
		}
	}
	return nil, nil
}

func (s *cacheService) Save(ctx context.Context, in SaveInput) (*types.CourseStructure, bool, error) {
	normalized := NormalizeSubject(in.Subject)
	if normalized == "" {
		return nil, false, fmt.Errorf("subject is required")
	}
	hashKey := HashKey(in.Subject, in.EducationLevel)

	existing, err := failover(s, ctx, func(st StructureStore) (*types.CourseStructure, error) {
		return st.GetByHashKey(ctx, hashKey)
	})
	if err != nil {
		return nil, false, fmt.Errorf("save lookup: %w", err)
	}
	if existing != nil {
		// Idempotent by hash: the stored entry wins, no overwrite.
		return existing, false, nil
	}

	structureData, err := json.Marshal(in.Modules)
	if err != nil {
		return nil, false, fmt.Errorf("encode structure data: %w", err)
	}
	metadata := []byte("{}")
	if in.Metadata != nil {
		if metadata, err = json.Marshal(in.Metadata); err != nil {
			return nil, false, fmt.Errorf("encode metadata: %w", err)
		}
	}

	now := time.Now().UTC()
	entry := &types.CourseStructure{
		ID:             uuid.New(),
		Subject:        normalized,
		EducationLevel: in.EducationLevel,
		Title:          in.Title,
		Description:    in.Description,
		CourseLevel:    in.CourseLevel,
		StructureData:  datatypes.JSON(structureData),
		TotalModules:   len(in.Modules),
		TotalTopics:    syllabus.CountTopics(in.Modules),
		HashKey:        hashKey,
		Metadata:       datatypes.JSON(metadata),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := failover(s, ctx, func(st StructureStore) (struct{}, error) {
		return struct{}{}, st.Insert(ctx, entry)
	}); err != nil {
		return nil, false, fmt.Errorf("insert structure: %w", err)
	}
	s.log.Info("structure cached",
		"structure_id", entry.ID, "subject", normalized,
		"modules", entry.TotalModules, "topics", entry.TotalTopics)
	return entry, true, nil
}

func (s *cacheService) RecordUsage(ctx context.Context, structureID uuid.UUID, reused bool, userIdentifier string) {
	record := &types.StructureUsage{
		ID:             uuid.New(),
		StructureID:    structureID,
		UserIdentifier: userIdentifier,
		Reused:         reused,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := failover(s, ctx, func(st StructureStore) (struct{}, error) {
		return struct{}{}, st.AppendUsage(ctx, record)
	}); err != nil {
		s.log.Warn("usage record dropped", "structure_id", structureID, "error", err)
	}
}

func (s *cacheService) GetOrGenerate(ctx context.Context, subject, educationLevel string, generate GenerateFunc) (*types.CourseStructure, bool, error) {
	type result struct {
		structure *types.CourseStructure
		reused    bool
	}

	key := HashKey(subject, educationLevel)
	v, err, _ := s.flight.Do(key, func() (any, error) {
		existing, err := s.FindExisting(ctx, subject, educationLevel)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return result{structure: existing, reused: true}, nil
		}

		in, err := generate(ctx)
		if err != nil {
			return nil, err
		}
		saved, _, err := s.Save(ctx, in)
		if err != nil {
			return nil, err
		}
		return result{structure: saved, reused: false}, nil
	})
	if err != nil {
		return nil, false, err
	}
	r := v.(result)
	return r.structure, r.reused, nil
}

func (s *cacheService) CleanupOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	return failover(s, ctx, func(st StructureStore) (int64, error) {
		return st.DeleteOlderThan(ctx, cutoff)
	})
}
