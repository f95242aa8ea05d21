package structurecache

import (
	"context"
	"time"

	"gorm.io/gorm"

	courserepo "github.com/edukraft/courseforge-backend/internal/data/repos/course"
	types "github.com/edukraft/courseforge-backend/internal/domain/course"
	"github.com/edukraft/courseforge-backend/internal/pkg/logger"
)

const defaultStoreTimeout = 5 * time.Second

// dbStore is the primary tier: gorm-backed, with a bounded timeout on every
// call so an unreachable database fails over instead of hanging.
type dbStore struct {
	db      *gorm.DB
	log     *logger.Logger
	repo    courserepo.StructureRepo
	usage   courserepo.StructureUsageRepo
	timeout time.Duration
}

func NewDBStore(db *gorm.DB, baseLog *logger.Logger, repo courserepo.StructureRepo, usage courserepo.StructureUsageRepo, timeout time.Duration) StructureStore {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &dbStore{
		db:      db,
		log:     baseLog.With("store", "DBStructureStore"),
		repo:    repo,
		usage:   usage,
		timeout: timeout,
	}
}

func (s *dbStore) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *dbStore) GetByHashKey(ctx context.Context, hashKey string) (*types.CourseStructure, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.repo.GetByHashKey(ctx, nil, hashKey)
}

func (s *dbStore) ListByEducationLevel(ctx context.Context, educationLevel string) ([]*types.CourseStructure, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.repo.GetByEducationLevel(ctx, nil, educationLevel)
}

func (s *dbStore) Insert(ctx context.Context, structure *types.CourseStructure) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	_, err := s.repo.Create(ctx, nil, []*types.CourseStructure{structure})
	return err
}

func (s *dbStore) AppendUsage(ctx context.Context, record *types.StructureUsage) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	_, err := s.usage.Create(ctx, nil, []*types.StructureUsage{record})
	return err
}

func (s *dbStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.repo.DeleteOlderThan(ctx, nil, cutoff)
}

func (s *dbStore) Healthy(ctx context.Context) bool {
	sqlDB, err := s.db.DB()
	if err != nil {
		return false
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return sqlDB.PingContext(ctx) == nil
}
