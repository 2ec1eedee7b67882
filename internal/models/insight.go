package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	InsightStatusDraft    = "draft"
	InsightStatusActive   = "active"
	InsightStatusArchived = "archived"
	InsightStatusDeleted  = "deleted"
)

// Insight is an analyst thesis with a validity window. Validity bounds are
// inclusive YYYY-MM-DD dates; nil means unbounded on that side.
type Insight struct {
	ID     string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title  string `gorm:"type:varchar(200);not null" json:"title"`
	Thesis string `gorm:"type:text" json:"thesis"`
	Status string `gorm:"type:varchar(20);not null;index;default:'draft'" json:"status"`

	ValidFrom *string `gorm:"type:varchar(10);index" json:"valid_from"`
	ValidTo   *string `gorm:"type:varchar(10);index" json:"valid_to"`

	Tags     datatypes.JSON `json:"tags"`
	Metadata datatypes.JSON `json:"metadata"`

	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (Insight) TableName() string {
	return "insights"
}
