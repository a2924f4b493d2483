package reference

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Rarity is one row of the static rarity lookup table.
type Rarity struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ItemType is one row of the static item type lookup table. MaxStackAmount
// bounds the number of units a single create call may insert; IsEquippable
// gates the equip operation.
type ItemType struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	MaxStackAmount int    `json:"maxStackAmount"`
	IsEquippable   bool   `json:"isEquippable"`
}

// Loader holds the two reference collections. Load is called once at
// process start; the slices are never mutated afterwards, so lookups need
// no locking. Tests may populate the exported fields directly.
type Loader struct {
	DataPath string

	Rarities []*Rarity
	Types    []*ItemType
}

// NewLoader creates a Loader for the given data directory.
func NewLoader(dataPath string) *Loader {
	return &Loader{DataPath: dataPath}
}

// Load reads rarities.json and types.json from the data directory.
func (l *Loader) Load() error {
	rarities, err := loadJSONArray[Rarity](l.path("rarities.json"))
	if err != nil {
		return err
	}
	types, err := loadJSONArray[ItemType](l.path("types.json"))
	if err != nil {
		return err
	}
	l.Rarities = rarities
	l.Types = types
	return nil
}

func (l *Loader) path(file string) string {
	return filepath.Join(l.DataPath, file)
}

func loadJSONArray[T any](path string) ([]*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reference: read %s: %w", path, err)
	}
	var arr []*T
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil, fmt.Errorf("reference: parse %s: %w", path, err)
	}
	return arr, nil
}

// RarityByID returns the Rarity with the given ID, or nil.
func (l *Loader) RarityByID(id int) *Rarity {
	for _, r := range l.Rarities {
		if r != nil && r.ID == id {
			return r
		}
	}
	return nil
}

// RarityByName returns the Rarity with the given name, or nil.
func (l *Loader) RarityByName(name string) *Rarity {
	for _, r := range l.Rarities {
		if r != nil && r.Name == name {
			return r
		}
	}
	return nil
}

// TypeByID returns the ItemType with the given ID, or nil.
func (l *Loader) TypeByID(id int) *ItemType {
	for _, t := range l.Types {
		if t != nil && t.ID == id {
			return t
		}
	}
	return nil
}

// TypeByName returns the ItemType with the given name, or nil.
func (l *Loader) TypeByName(name string) *ItemType {
	for _, t := range l.Types {
		if t != nil && t.Name == name {
			return t
		}
	}
	return nil
}
