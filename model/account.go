package model

import "time"

// Account represents a player account. The ID is supplied by the caller
// (a platform-issued user id such as a Discord snowflake), never generated
// server-side.
type Account struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Dollars   int       `gorm:"default:100" json:"dollars"`
	HP        int       `gorm:"default:100" json:"hp"`
	FactionID *string   `gorm:"size:36;index" json:"faction_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
