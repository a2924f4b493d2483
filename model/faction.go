package model

import "time"

// Faction is a named group of accounts. Membership is not stored here;
// it is derived by querying accounts whose faction_id matches.
// A faction with zero remaining members is deleted when its last member
// leaves.
type Faction struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	EmojiName string    `gorm:"size:64" json:"emoji_name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
