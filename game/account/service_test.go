package account

import (
	"context"
	"testing"

	"github.com/karumeo/gameledger/model"
	"github.com/karumeo/gameledger/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := NewService(db, testutil.SetupTestCache(t), zap.NewNop())
	return svc, db
}

func TestCreate_Defaults(t *testing.T) {
	svc, _ := newService(t)

	acc, err := svc.Create(context.Background(), 42)
	require.NoError(t, err)
	assert.EqualValues(t, 42, acc.ID)
	assert.Equal(t, 100, acc.Dollars)
	assert.Equal(t, 100, acc.HP)
	assert.Nil(t, acc.FactionID)
}

func TestCreate_Duplicate(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), 42)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 42)
	assert.ErrorIs(t, err, ErrExists)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Get(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdjustHP_Clamps(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Create(context.Background(), 1)
	require.NoError(t, err)

	hp, err := svc.AdjustHP(context.Background(), 1, -250)
	require.NoError(t, err)
	assert.Equal(t, 0, hp)

	hp, err = svc.AdjustHP(context.Background(), 1, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, hp)

	hp, err = svc.AdjustHP(context.Background(), 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, 100, hp)
}

func TestAdjustHP_ClampIdempotent(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Create(context.Background(), 1)
	require.NoError(t, err)

	first, err := svc.AdjustHP(context.Background(), 1, 1000)
	require.NoError(t, err)
	second, err := svc.AdjustHP(context.Background(), 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 100, second)
}

func TestAdjustDollars_Unclamped(t *testing.T) {
	svc, db := newService(t)
	_, err := svc.Create(context.Background(), 1)
	require.NoError(t, err)

	dollars, err := svc.AdjustDollars(context.Background(), 1, -500)
	require.NoError(t, err)
	assert.Equal(t, -400, dollars)

	var acc model.Account
	require.NoError(t, db.Where("id = ?", 1).First(&acc).Error)
	assert.Equal(t, -400, acc.Dollars)
}

func TestAdjust_NotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.AdjustHP(context.Background(), 999, 10)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.AdjustDollars(context.Background(), 999, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLeaderboard_OrderedByDollars(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		_, err := svc.Create(ctx, id)
		require.NoError(t, err)
	}
	_, err := svc.AdjustDollars(ctx, 2, 900) // 1000
	require.NoError(t, err)
	_, err = svc.AdjustDollars(ctx, 3, -50) // 50
	require.NoError(t, err)

	entries, err := svc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.EqualValues(t, 2, entries[0].AccountID)
	assert.Equal(t, 1000, entries[0].Dollars)
	assert.Equal(t, 1, entries[0].Rank)
	assert.EqualValues(t, 3, entries[2].AccountID)
}

func TestLeaderboard_DBFallbackWhenCacheEmpty(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	// Seed accounts directly so the cache never saw them.
	require.NoError(t, db.Create(&model.Account{ID: 7, Dollars: 70, HP: 100}).Error)
	require.NoError(t, db.Create(&model.Account{ID: 8, Dollars: 80, HP: 100}).Error)

	entries, err := svc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.EqualValues(t, 8, entries[0].AccountID)
}

func TestRefreshLeaderboard(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&model.Account{ID: 7, Dollars: 70, HP: 100}).Error)
	n, err := svc.RefreshLeaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entries, err := svc.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.EqualValues(t, 7, entries[0].AccountID)
}
