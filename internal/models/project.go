package models

import "gorm.io/gorm"

// Project is one event's collection point. PublicID is the only identifier
// ever exposed over the API; the gorm row id stays internal.
type Project struct {
	gorm.Model

	PublicID   string `gorm:"uniqueIndex;not null"`
	Name       string `gorm:"not null"`
	OwnerID    uint   `gorm:"not null;index"`
	QRCode     string // PNG data URL encoding the guest upload link
	FinalVideo string

	// Relationships
	Owner User    `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Media []Media `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
