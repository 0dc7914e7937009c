package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseDraft holds the last saved builder snapshot of one user for one course.
type CourseDraft struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_course_draft_course_user" json:"course_id"`
	Course   *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	UserID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_course_draft_course_user" json:"user_id"`
	Revision int            `gorm:"column:revision;not null;default:0" json:"revision"`
	Snapshot datatypes.JSON `gorm:"column:snapshot;type:jsonb;not null" json:"snapshot"`
	SavedAt  time.Time      `gorm:"column:saved_at;not null;index" json:"saved_at"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CourseDraft) TableName() string { return "course_draft" }

func (d *CourseDraft) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
