package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/edukraft/courseforge-backend/internal/domain/course"
)

func SeedStructure(tb testing.TB, ctx context.Context, tx *gorm.DB, subject, level, hashKey string) *types.CourseStructure {
	tb.Helper()
	s := &types.CourseStructure{
		ID:             uuid.New(),
		Subject:        subject,
		EducationLevel: level,
		Title:          "Curso de " + subject,
		StructureData:  datatypes.JSON([]byte("[]")),
		TotalModules:   0,
		TotalTopics:    0,
		HashKey:        hashKey,
		Metadata:       datatypes.JSON([]byte("{}")),
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed structure: %v", err)
	}
	return s
}

func SeedUsage(tb testing.TB, ctx context.Context, tx *gorm.DB, structureID uuid.UUID, reused bool) *types.StructureUsage {
	tb.Helper()
	u := &types.StructureUsage{
		ID:             uuid.New(),
		StructureID:    structureID,
		UserIdentifier: "tester",
		Reused:         reused,
		CreatedAt:      time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed usage: %v", err)
	}
	return u
}
