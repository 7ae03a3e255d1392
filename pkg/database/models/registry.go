package models

import (
	"time"
)

// Registry represents a character registry cached in the database,
// keyed by the URL it was fetched from.
type Registry struct {
	URL        string `gorm:"primaryKey"`
	Name       string `gorm:"index;not null"`
	Version    string
	Maintainer string
	AddedAt    time.Time `gorm:"not null"`
}

// TableName specifies the table name for Registry
func (Registry) TableName() string {
	return "registries"
}
