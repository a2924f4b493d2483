package account

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/karumeo/gameledger/cache"
	"github.com/karumeo/gameledger/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("account: not found")
	ErrExists   = errors.New("account: already exists")
)

const (
	minHP = 0
	maxHP = 100

	defaultDollars = 100
	defaultHP      = 100

	leaderboardKey = "leaderboard:dollars"
	leaderboardTop = 100
)

// Service handles account lifecycle and balance adjustments.
type Service struct {
	db     *gorm.DB
	cache  cache.Cache
	logger *zap.Logger
}

// NewService creates an account Service.
func NewService(db *gorm.DB, c cache.Cache, logger *zap.Logger) *Service {
	return &Service{db: db, cache: c, logger: logger}
}

// Create inserts an account with default stats. The id is supplied by the
// caller; creating an id that already exists fails with ErrExists.
func (s *Service) Create(ctx context.Context, id int64) (*model.Account, error) {
	var existing model.Account
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&existing).Error
	if err == nil {
		return nil, ErrExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check account: %w", err)
	}

	acc := model.Account{ID: id, Dollars: defaultDollars, HP: defaultHP}
	if err := s.db.WithContext(ctx).Create(&acc).Error; err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	_ = s.cache.ZAdd(ctx, leaderboardKey, float64(acc.Dollars), strconv.FormatInt(id, 10))
	s.logger.Info("account created", zap.Int64("account_id", id))
	return &acc, nil
}

// Get fetches an account by id.
func (s *Service) Get(ctx context.Context, id int64) (*model.Account, error) {
	var acc model.Account
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&acc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	return &acc, nil
}

// AdjustHP applies a health delta, clamped to [0,100], and persists the
// result even when clamping makes it a no-op.
func (s *Service) AdjustHP(ctx context.Context, id int64, delta int) (int, error) {
	acc, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	newHP := clamp(acc.HP+delta, minHP, maxHP)
	if err := s.db.WithContext(ctx).Model(acc).Update("hp", newHP).Error; err != nil {
		return 0, fmt.Errorf("update hp: %w", err)
	}
	return newHP, nil
}

// AdjustDollars applies a balance delta. Balances are unclamped and may
// go negative. The leaderboard cache entry is refreshed best-effort.
func (s *Service) AdjustDollars(ctx context.Context, id int64, delta int) (int, error) {
	acc, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	newDollars := acc.Dollars + delta
	if err := s.db.WithContext(ctx).Model(acc).Update("dollars", newDollars).Error; err != nil {
		return 0, fmt.Errorf("update dollars: %w", err)
	}
	_ = s.cache.ZAdd(ctx, leaderboardKey, float64(newDollars), strconv.FormatInt(id, 10))
	return newDollars, nil
}

// Entry is one row of the dollars leaderboard.
type Entry struct {
	Rank      int   `json:"rank"`
	AccountID int64 `json:"account_id"`
	Dollars   int   `json:"dollars"`
}

// Leaderboard returns accounts ordered by dollars descending. The cached
// sorted set is consulted first; on a miss the DB is queried and the
// cache re-seeded.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > leaderboardTop {
		limit = leaderboardTop
	}

	members, err := s.cache.ZRevRange(ctx, leaderboardKey, 0, int64(limit-1))
	if err == nil && len(members) > 0 {
		entries := make([]Entry, 0, len(members))
		for i, m := range members {
			id, err := strconv.ParseInt(m, 10, 64)
			if err != nil {
				continue
			}
			score, _ := s.cache.ZScore(ctx, leaderboardKey, m)
			entries = append(entries, Entry{Rank: i + 1, AccountID: id, Dollars: int(score)})
		}
		return entries, nil
	}

	var accounts []model.Account
	err = s.db.WithContext(ctx).
		Order("dollars DESC").
		Limit(limit).
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	entries := make([]Entry, len(accounts))
	for i, acc := range accounts {
		entries[i] = Entry{Rank: i + 1, AccountID: acc.ID, Dollars: acc.Dollars}
		_ = s.cache.ZAdd(ctx, leaderboardKey, float64(acc.Dollars), strconv.FormatInt(acc.ID, 10))
	}
	return entries, nil
}

// RefreshLeaderboard rebuilds the cached sorted set from the DB. Called
// periodically by the scheduler.
func (s *Service) RefreshLeaderboard(ctx context.Context) (int, error) {
	var accounts []model.Account
	err := s.db.WithContext(ctx).
		Select("id, dollars").
		Order("dollars DESC").
		Limit(leaderboardTop).
		Find(&accounts).Error
	if err != nil {
		return 0, fmt.Errorf("refresh leaderboard: %w", err)
	}
	for _, acc := range accounts {
		_ = s.cache.ZAdd(ctx, leaderboardKey, float64(acc.Dollars), strconv.FormatInt(acc.ID, 10))
	}
	return len(accounts), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
