package model

import (
	"time"

	"gorm.io/datatypes"
)

// Item is a single physical inventory unit. Creating N units of something
// inserts N rows; stacks are assembled at read time by grouping rows that
// share name and owner (see game/item).
type Item struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	OwnerID     int64          `gorm:"index:idx_owner_name;not null" json:"owner_id"`
	Name        string         `gorm:"index:idx_owner_name;size:64;not null" json:"name"`
	Description string         `gorm:"size:255" json:"description"`
	TypeID      int            `gorm:"not null" json:"type_id"`
	RarityID    int            `gorm:"not null" json:"rarity_id"`
	IsEquipped  bool           `gorm:"default:false" json:"is_equipped"`
	IsDropped   bool           `gorm:"default:false" json:"is_dropped"`
	Attributes  datatypes.JSON `json:"attributes"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}
