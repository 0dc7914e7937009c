package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lesson rows back builder lessons. Kind holds the builder content type.
type Lesson struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"module_id"`
	Module    *CourseModule `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	Index     int           `gorm:"column:index;not null" json:"index"`
	Title     string        `gorm:"column:title;not null" json:"title"`
	Kind      string        `gorm:"column:kind;not null;default:'text'" json:"kind"`
	IsPreview bool          `gorm:"column:is_preview;not null;default:false" json:"is_preview"`

	ContentMD string         `gorm:"column:content_md;type:text" json:"content_md"`
	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Lesson) TableName() string { return "lesson" }

func (l *Lesson) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
