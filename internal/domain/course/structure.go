package course

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseStructure is a cached course syllabus, content-addressed by HashKey.
// Subject is stored normalized (lowercased, trimmed); HashKey is derived from
// (normalized subject, education level) and is stable across processes.
type CourseStructure struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Subject        string    `gorm:"column:subject;not null;index" json:"subject"`
	EducationLevel string    `gorm:"column:education_level;not null;index" json:"education_level"`

	Title       string `gorm:"column:title" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`
	CourseLevel string `gorm:"column:course_level" json:"course_level"`

	StructureData datatypes.JSON `gorm:"column:structure_data;type:jsonb;not null" json:"structure_data"`
	TotalModules  int            `gorm:"column:total_modules;not null;default:0" json:"total_modules"`
	TotalTopics   int            `gorm:"column:total_topics;not null;default:0" json:"total_topics"`

	HashKey  string         `gorm:"column:hash_key;not null;uniqueIndex" json:"hash_key"`
	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CourseStructure) TableName() string { return "course_structure" }

// StructureUsage is an append-only reuse/generation event, one row per request.
// Rows are never updated after creation.
type StructureUsage struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StructureID    uuid.UUID `gorm:"type:uuid;not null;index" json:"structure_id"`
	UserIdentifier string    `gorm:"column:user_identifier" json:"user_identifier"`
	Reused         bool      `gorm:"column:reused;not null;default:false" json:"reused"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

func (StructureUsage) TableName() string { return "structure_usage" }
