package models

import "gorm.io/gorm"

const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

// Media is one guest submission. Rows are append-only: they are inserted at
// upload time, never updated, and removed only when the whole project goes.
// Kind is derived from the uploaded file's Content-Type exactly once, at
// ingestion.
type Media struct {
	gorm.Model

	ProjectID  uint   `gorm:"not null;index"`
	GuestName  string `gorm:"not null"`
	Kind       string `gorm:"not null"` // "image" or "video"
	URL        string `gorm:"not null"`
	StorageKey string `gorm:"not null"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
