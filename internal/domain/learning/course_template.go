package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseTemplate is a stored template export. StorageKey and PublicURL are empty when no
// bucket is configured.
type CourseTemplate struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"course_id"`
	Course         *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	EstimatedHours int            `gorm:"column:estimated_hours;not null;default:0" json:"estimated_hours"`
	Structure      datatypes.JSON `gorm:"column:structure;type:jsonb;not null" json:"structure"`
	StorageKey     string         `gorm:"column:storage_key" json:"storage_key,omitempty"`
	PublicURL      string         `gorm:"column:public_url" json:"public_url,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CourseTemplate) TableName() string { return "course_template" }

func (t *CourseTemplate) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
