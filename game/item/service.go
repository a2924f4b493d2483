package item

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/karumeo/gameledger/model"
	"github.com/karumeo/gameledger/reference"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Stable failure taxonomy. Anything else bubbling out of the service is a
// store failure.
var (
	ErrItemNotFound    = errors.New("item: not found")
	ErrAccountNotFound = errors.New("item: account not found")
	ErrInvalidType     = errors.New("item: type does not exist")
	ErrInvalidRarity   = errors.New("item: rarity does not exist")
	ErrStackLimit      = errors.New("item: amount exceeds type stack limit")
	ErrNotEquippable   = errors.New("item: type is not equippable")
)

// Service implements the item stacking, transfer, equip and drop model.
type Service struct {
	db     *gorm.DB
	ref    *reference.Loader
	logger *zap.Logger
}

// NewService creates an item Service.
func NewService(db *gorm.DB, ref *reference.Loader, logger *zap.Logger) *Service {
	return &Service{db: db, ref: ref, logger: logger}
}

// Stack is the display-level projection of one or more items sharing
// name and owner. ID, type, rarity and attributes come from the first
// member of the group; Amount is the group size.
type Stack struct {
	ID          string              `json:"id"`
	OwnerID     int64               `json:"owner_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Type        *reference.ItemType `json:"type"`
	Rarity      *reference.Rarity   `json:"rarity"`
	Amount      int                 `json:"amount"`
	IsEquipped  bool                `json:"is_equipped"`
	IsDropped   bool                `json:"is_dropped"`
	Attributes  datatypes.JSON      `json:"attributes"`
}

func (s *Service) stackOf(items []model.Item) Stack {
	first := items[0]
	return Stack{
		ID:          first.ID,
		OwnerID:     first.OwnerID,
		Name:        first.Name,
		Description: first.Description,
		Type:        s.ref.TypeByID(first.TypeID),
		Rarity:      s.ref.RarityByID(first.RarityID),
		Amount:      len(items),
		IsEquipped:  first.IsEquipped,
		IsDropped:   first.IsDropped,
		Attributes:  first.Attributes,
	}
}

// loadItem fetches one item row, mapping absence to ErrItemNotFound.
func (s *Service) loadItem(ctx context.Context, id string) (*model.Item, error) {
	var it model.Item
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&it).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("load item: %w", err)
	}
	return &it, nil
}

// group fetches every item sharing name and owner with the given item,
// oldest first. The stacking key is name+owner only; rarity and type are
// ignored.
func (s *Service) group(ctx context.Context, it *model.Item) ([]model.Item, error) {
	var items []model.Item
	err := s.db.WithContext(ctx).
		Where("name = ? AND owner_id = ?", it.Name, it.OwnerID).
		Order("created_at").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load item group: %w", err)
	}
	return items, nil
}

// Get resolves an item id into display stacks. With stacked=false (or when
// nothing else groups with the item) it returns a single record with
// Amount=1. With stacked=true the name+owner group is partitioned by
// dropped state: held and dropped items never stack together.
func (s *Service) Get(ctx context.Context, id string, stacked bool) ([]Stack, error) {
	it, err := s.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if !stacked {
		return []Stack{s.stackOf([]model.Item{*it})}, nil
	}

	group, err := s.group(ctx, it)
	if err != nil {
		return nil, err
	}
	if len(group) <= 1 {
		return []Stack{s.stackOf([]model.Item{*it})}, nil
	}

	var held, dropped []model.Item
	for _, m := range group {
		if m.IsDropped {
			dropped = append(dropped, m)
		} else {
			held = append(held, m)
		}
	}
	var stacks []Stack
	if len(held) > 0 {
		stacks = append(stacks, s.stackOf(held))
	}
	if len(dropped) > 0 {
		stacks = append(stacks, s.stackOf(dropped))
	}
	return stacks, nil
}

// Inventory returns the stacked inventory of an owner: all their items
// grouped by name and partitioned by dropped state, ordered by type.
func (s *Service) Inventory(ctx context.Context, ownerID int64) ([]Stack, error) {
	var items []model.Item
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("type_id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	type bucketKey struct {
		name    string
		dropped bool
	}
	var order []bucketKey
	buckets := make(map[bucketKey][]model.Item)
	for _, it := range items {
		k := bucketKey{name: it.Name, dropped: it.IsDropped}
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], it)
	}

	stacks := make([]Stack, 0, len(order))
	for _, k := range order {
		stacks = append(stacks, s.stackOf(buckets[k]))
	}
	return stacks, nil
}

// CreateInput holds the parameters for Create.
type CreateInput struct {
	Name        string
	Description string
	RarityID    int
	TypeID      int
	Amount      int
	OwnerID     int64
	Attributes  datatypes.JSON
}

// Create validates the type, stack limit and rarity, then inserts Amount
// independent item rows sharing everything but the id. Returns the
// generated ids in insertion order. Validation failures insert nothing.
func (s *Service) Create(ctx context.Context, in CreateInput) ([]string, error) {
	typ := s.ref.TypeByID(in.TypeID)
	if typ == nil {
		return nil, ErrInvalidType
	}
	if in.Amount > typ.MaxStackAmount {
		return nil, ErrStackLimit
	}
	if s.ref.RarityByID(in.RarityID) == nil {
		return nil, ErrInvalidRarity
	}

	ids := make([]string, 0, in.Amount)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := 0; i < in.Amount; i++ {
			it := model.Item{
				ID:          uuid.New().String(),
				OwnerID:     in.OwnerID,
				Name:        in.Name,
				Description: in.Description,
				TypeID:      in.TypeID,
				RarityID:    in.RarityID,
				Attributes:  in.Attributes,
			}
			if err := tx.Create(&it).Error; err != nil {
				return err
			}
			ids = append(ids, it.ID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create items: %w", err)
	}
	s.logger.Info("items created",
		zap.String("name", in.Name),
		zap.Int64("owner_id", in.OwnerID),
		zap.Int("amount", in.Amount))
	return ids, nil
}

// Transfer reassigns ownership of an item, or — with stacked=true and at
// least two non-dropped items sharing name+owner — of the whole held
// stack in one transaction. Dropped items with the same name and owner
// are never moved. Equip and drop state is carried as-is.
func (s *Service) Transfer(ctx context.Context, id string, newOwnerID int64, stacked bool) (int64, error) {
	it, err := s.loadItem(ctx, id)
	if err != nil {
		return 0, err
	}

	var dest model.Account
	if err := s.db.WithContext(ctx).Where("id = ?", newOwnerID).First(&dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrAccountNotFound
		}
		return 0, fmt.Errorf("load destination account: %w", err)
	}

	if stacked {
		var held int64
		err := s.db.WithContext(ctx).Model(&model.Item{}).
			Where("name = ? AND owner_id = ? AND is_dropped = ?", it.Name, it.OwnerID, false).
			Count(&held).Error
		if err != nil {
			return 0, fmt.Errorf("count held stack: %w", err)
		}
		if held > 1 {
			res := s.db.WithContext(ctx).Model(&model.Item{}).
				Where("name = ? AND owner_id = ? AND is_dropped = ?", it.Name, it.OwnerID, false).
				Update("owner_id", newOwnerID)
			if res.Error != nil {
				return 0, fmt.Errorf("transfer stack: %w", res.Error)
			}
			s.logger.Info("stack transferred",
				zap.String("name", it.Name),
				zap.Int64("from", it.OwnerID),
				zap.Int64("to", newOwnerID),
				zap.Int64("moved", res.RowsAffected))
			return res.RowsAffected, nil
		}
	}

	if err := s.db.WithContext(ctx).Model(&model.Item{}).
		Where("id = ?", it.ID).
		Update("owner_id", newOwnerID).Error; err != nil {
		return 0, fmt.Errorf("transfer item: %w", err)
	}
	return 1, nil
}

// SetEquipped sets the equipped flag on a single item. The item's type
// must resolve and allow equipping. Dropped state is untouched here.
func (s *Service) SetEquipped(ctx context.Context, id string, equipped bool) (*model.Item, error) {
	it, err := s.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}
	typ := s.ref.TypeByID(it.TypeID)
	if typ == nil {
		return nil, ErrInvalidType
	}
	if !typ.IsEquippable {
		return nil, ErrNotEquippable
	}
	if err := s.db.WithContext(ctx).Model(it).
		Update("is_equipped", equipped).Error; err != nil {
		return nil, fmt.Errorf("update equipped: %w", err)
	}
	it.IsEquipped = equipped
	return it, nil
}

// SetDropped sets the dropped flag and always clears the equipped flag:
// an item cannot be both dropped and equipped, and picking an item back
// up requires re-equipping it explicitly. With stacked=true the update
// applies to the whole name+owner group, regardless of each member's
// current dropped state (unlike Transfer's held-only filter).
func (s *Service) SetDropped(ctx context.Context, id string, dropped, stacked bool) (int64, error) {
	it, err := s.loadItem(ctx, id)
	if err != nil {
		return 0, err
	}

	q := s.db.WithContext(ctx).Model(&model.Item{})
	if stacked {
		var size int64
		err := s.db.WithContext(ctx).Model(&model.Item{}).
			Where("name = ? AND owner_id = ?", it.Name, it.OwnerID).
			Count(&size).Error
		if err != nil {
			return 0, fmt.Errorf("count stack: %w", err)
		}
		if size > 1 {
			q = q.Where("name = ? AND owner_id = ?", it.Name, it.OwnerID)
		} else {
			q = q.Where("id = ?", it.ID)
		}
	} else {
		q = q.Where("id = ?", it.ID)
	}

	res := q.Updates(map[string]interface{}{
		"is_dropped":  dropped,
		"is_equipped": false,
	})
	if res.Error != nil {
		return 0, fmt.Errorf("update dropped: %w", res.Error)
	}
	return res.RowsAffected, nil
}
