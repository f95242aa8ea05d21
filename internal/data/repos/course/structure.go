package course

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/edukraft/courseforge-backend/internal/domain/course"
	"github.com/edukraft/courseforge-backend/internal/pkg/logger"
)

type StructureRepo interface {
	Create(ctx context.Context, tx *gorm.DB, structures []*types.CourseStructure) ([]*types.CourseStructure, error)
	GetByHashKey(ctx context.Context, tx *gorm.DB, hashKey string) (*types.CourseStructure, error)
	GetByEducationLevel(ctx context.Context, tx *gorm.DB, educationLevel string) ([]*types.CourseStructure, error)
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type structureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStructureRepo(db *gorm.DB, baseLog *logger.Logger) StructureRepo {
	return &structureRepo{db: db, log: baseLog.With("repo", "StructureRepo")}
}

func (r *structureRepo) Create(ctx context.Context, tx *gorm.DB, structures []*types.CourseStructure) ([]*types.CourseStructure, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(structures) == 0 {
		return []*types.CourseStructure{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&structures).Error; err != nil {
		return nil, err
	}
	return structures, nil
}

// GetByHashKey returns nil without error when no entry matches.
func (r *structureRepo) GetByHashKey(ctx context.Context, tx *gorm.DB, hashKey string) (*types.CourseStructure, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if hashKey == "" {
		return nil, nil
	}

	var result types.CourseStructure
	err := transaction.WithContext(ctx).
		Where("hash_key = ?", hashKey).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *structureRepo) GetByEducationLevel(ctx context.Context, tx *gorm.DB, educationLevel string) ([]*types.CourseStructure, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CourseStructure
	if educationLevel == "" {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("education_level = ?", educationLevel).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteOlderThan is the retention cleanup: structures untouched since cutoff
// are soft-deleted and stop serving cache hits.
func (r *structureRepo) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Where("updated_at < ?", cutoff).
		Delete(&types.CourseStructure{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
