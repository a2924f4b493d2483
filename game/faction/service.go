package faction

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/karumeo/gameledger/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrFactionNotFound  = errors.New("faction: not found")
	ErrAccountNotFound  = errors.New("faction: account not found")
	ErrAlreadyInFaction = errors.New("faction: account already in a faction")
	ErrNameTaken        = errors.New("faction: name already taken")
)

// Service handles faction lifecycle and membership. Membership lives on
// the accounts table; a faction whose last member leaves is deleted.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a faction Service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Member is the membership projection of an account.
type Member struct {
	ID      int64 `json:"id"`
	Dollars int   `json:"dollars"`
	HP      int   `json:"hp"`
}

// Detail is a faction with its derived member list.
type Detail struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	EmojiName string   `json:"emoji_name"`
	Members   []Member `json:"members"`
}

// Create inserts a new faction after checking the name is free.
func (s *Service) Create(ctx context.Context, name, emojiName string) (*model.Faction, error) {
	var existing model.Faction
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error
	if err == nil {
		return nil, ErrNameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check faction name: %w", err)
	}

	f := model.Faction{ID: uuid.New().String(), Name: name, EmojiName: emojiName}
	if err := s.db.WithContext(ctx).Create(&f).Error; err != nil {
		return nil, fmt.Errorf("create faction: %w", err)
	}
	s.logger.Info("faction created", zap.String("faction_id", f.ID), zap.String("name", name))
	return &f, nil
}

// GetByID resolves a faction and its members by id.
func (s *Service) GetByID(ctx context.Context, id string) (*Detail, error) {
	var f model.Faction
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFactionNotFound
		}
		return nil, fmt.Errorf("load faction: %w", err)
	}
	return s.detail(ctx, &f)
}

// GetByName resolves a faction and its members by name.
func (s *Service) GetByName(ctx context.Context, name string) (*Detail, error) {
	var f model.Faction
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFactionNotFound
		}
		return nil, fmt.Errorf("load faction: %w", err)
	}
	return s.detail(ctx, &f)
}

func (s *Service) detail(ctx context.Context, f *model.Faction) (*Detail, error) {
	var accounts []model.Account
	err := s.db.WithContext(ctx).Where("faction_id = ?", f.ID).Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("load faction members: %w", err)
	}
	members := make([]Member, len(accounts))
	for i, acc := range accounts {
		members[i] = Member{ID: acc.ID, Dollars: acc.Dollars, HP: acc.HP}
	}
	return &Detail{ID: f.ID, Name: f.Name, EmojiName: f.EmojiName, Members: members}, nil
}

// loadPair resolves the faction and account involved in a membership
// change, mapping absence to the taxonomy errors.
func (s *Service) loadPair(ctx context.Context, factionID string, accountID int64) (*model.Faction, *model.Account, error) {
	var f model.Faction
	if err := s.db.WithContext(ctx).Where("id = ?", factionID).First(&f).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrFactionNotFound
		}
		return nil, nil, fmt.Errorf("load faction: %w", err)
	}
	var acc model.Account
	if err := s.db.WithContext(ctx).Where("id = ?", accountID).First(&acc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrAccountNotFound
		}
		return nil, nil, fmt.Errorf("load account: %w", err)
	}
	return &f, &acc, nil
}

// Join sets the account's faction reference. An account already in any
// faction cannot join another.
func (s *Service) Join(ctx context.Context, factionID string, accountID int64) error {
	f, acc, err := s.loadPair(ctx, factionID, accountID)
	if err != nil {
		return err
	}
	if acc.FactionID != nil {
		return ErrAlreadyInFaction
	}
	if err := s.db.WithContext(ctx).Model(acc).Update("faction_id", f.ID).Error; err != nil {
		return fmt.Errorf("join faction: %w", err)
	}
	s.logger.Info("faction joined",
		zap.String("faction_id", f.ID),
		zap.Int64("account_id", accountID))
	return nil
}

// Leave clears the account's faction reference unconditionally (the
// account is not required to actually be in the named faction), then
// deletes the faction if no members remain. Returns whether the faction
// was dissolved.
func (s *Service) Leave(ctx context.Context, factionID string, accountID int64) (bool, error) {
	f, acc, err := s.loadPair(ctx, factionID, accountID)
	if err != nil {
		return false, err
	}

	if err := s.db.WithContext(ctx).Model(acc).Update("faction_id", nil).Error; err != nil {
		return false, fmt.Errorf("leave faction: %w", err)
	}

	var remaining int64
	err = s.db.WithContext(ctx).Model(&model.Account{}).
		Where("faction_id = ?", f.ID).
		Count(&remaining).Error
	if err != nil {
		return false, fmt.Errorf("count remaining members: %w", err)
	}
	if remaining > 0 {
		return false, nil
	}

	if err := s.db.WithContext(ctx).Delete(&model.Faction{}, "id = ?", f.ID).Error; err != nil {
		return false, fmt.Errorf("dissolve faction: %w", err)
	}
	s.logger.Info("faction dissolved",
		zap.String("faction_id", f.ID),
		zap.String("name", f.Name))
	return true, nil
}
