package course

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/edukraft/courseforge-backend/internal/domain/course"
	"github.com/edukraft/courseforge-backend/internal/pkg/logger"
)

// StructureUsageRepo is append-only: usage rows are created and read, never
// updated or deleted.
type StructureUsageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, records []*types.StructureUsage) ([]*types.StructureUsage, error)
	GetByStructureIDs(ctx context.Context, tx *gorm.DB, structureIDs []uuid.UUID) ([]*types.StructureUsage, error)
	CountReuse(ctx context.Context, tx *gorm.DB, structureID uuid.UUID) (int64, error)
}

type structureUsageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStructureUsageRepo(db *gorm.DB, baseLog *logger.Logger) StructureUsageRepo {
	return &structureUsageRepo{db: db, log: baseLog.With("repo", "StructureUsageRepo")}
}

func (r *structureUsageRepo) Create(ctx context.Context, tx *gorm.DB, records []*types.StructureUsage) ([]*types.StructureUsage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(records) == 0 {
		return []*types.StructureUsage{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *structureUsageRepo) GetByStructureIDs(ctx context.Context, tx *gorm.DB, structureIDs []uuid.UUID) ([]*types.StructureUsage, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.StructureUsage
	if len(structureIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("structure_id IN ?", structureIDs).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *structureUsageRepo) CountReuse(ctx context.Context, tx *gorm.DB, structureID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.StructureUsage{}).
		Where("structure_id = ? AND reused = ?", structureID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
