package testutil

import (
	"testing"

	"github.com/karumeo/gameledger/cache"
	"github.com/karumeo/gameledger/db/sqlite"
	"github.com/karumeo/gameledger/model"
	"github.com/karumeo/gameledger/reference"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDB creates an in-memory SQLite DB and runs AutoMigrate.
// It requires no external services.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	return db
}

// SetupTestCache creates a LocalCache (no Redis required).
func SetupTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.New(cache.Config{}) // empty RedisAddr → LocalCache
	require.NoError(t, err, "SetupTestCache: New")
	return c
}

// SetupTestReference builds a Loader with a small fixed rarity/type set:
// rarity 1 Common / 2 Rare; type 1 Consumable (stack 50, not equippable) /
// type 2 Weapon (stack 1, equippable) / type 3 Material (stack 99).
func SetupTestReference(t *testing.T) *reference.Loader {
	t.Helper()
	l := reference.NewLoader("")
	l.Rarities = []*reference.Rarity{
		{ID: 1, Name: "Common"},
		{ID: 2, Name: "Rare"},
	}
	l.Types = []*reference.ItemType{
		{ID: 1, Name: "Consumable", MaxStackAmount: 50, IsEquippable: false},
		{ID: 2, Name: "Weapon", MaxStackAmount: 1, IsEquippable: true},
		{ID: 3, Name: "Material", MaxStackAmount: 99, IsEquippable: false},
	}
	return l
}
