package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	MethodStatusActive   = "active"
	MethodStatusArchived = "archived"
)

// ValuationMethod is a named, versioned valuation recipe. Built-in methods are
// read-only and can only be cloned.
type ValuationMethod struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	MethodKey   string `gorm:"type:varchar(64);not null;uniqueIndex" json:"method_key"`
	Name        string `gorm:"type:varchar(120);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IsBuiltin   bool   `gorm:"not null;default:false;index" json:"is_builtin"`
	Status      string `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`

	// AssetScope lists the domains the method is meant for, e.g. ["stock","fund"].
	AssetScope datatypes.JSON `json:"asset_scope"`

	ActiveVersionID *uint64 `json:"active_version_id"`
	// ClonedFrom is the template key for custom methods created via clone.
	ClonedFrom *string `gorm:"type:varchar(64)" json:"cloned_from"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ValuationMethod) TableName() string {
	return "valuation_methods"
}

// ValuationMethodVersion carries the metric graph, parameter schema and formula
// of one published revision of a method.
type ValuationMethodVersion struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	MethodID uint64 `gorm:"not null;uniqueIndex:uniq_method_version" json:"method_id"`
	Version  int    `gorm:"not null;uniqueIndex:uniq_method_version" json:"version"`

	Graph        datatypes.JSON `json:"graph"`
	ParamsSchema datatypes.JSON `json:"params_schema"`
	MetricSchema datatypes.JSON `json:"metric_schema"`
	FormulaID    string         `gorm:"type:varchar(64);not null" json:"formula_id"`

	EffectiveFrom *string `gorm:"type:varchar(10)" json:"effective_from"`
	EffectiveTo   *string `gorm:"type:varchar(10)" json:"effective_to"`
	Notes         string  `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ValuationMethodVersion) TableName() string {
	return "valuation_method_versions"
}
