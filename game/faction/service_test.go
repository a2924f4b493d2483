package faction

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
	return NewService(db, zap.NewNop()), db
}

func seedAccount(t *testing.T, db *gorm.DB, id int64) {
	t.Helper()
	require.NoError(t, db.Create(&model.Account{ID: id, Dollars: 100, HP: 100}).Error)
}

func TestCreate_Success(t *testing.T) {
	svc, _ := newService(t)

	f, err := svc.Create(context.Background(), "Red", ":red:")
	require.NoError(t, err)
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, "Red", f.Name)
	assert.Equal(t, ":red:", f.EmojiName)
}

func TestCreate_NameTaken(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Create(context.Background(), "Red", ":red:")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "Red", ":crimson:")
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestGet_ByIDAndName(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	f, err := svc.Create(ctx, "Blue", ":blue:")
	require.NoError(t, err)
	seedAccount(t, db, 1)
	require.NoError(t, svc.Join(ctx, f.ID, 1))

	d, err := svc.GetByID(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, d.Members, 1)
	assert.EqualValues(t, 1, d.Members[0].ID)
	assert.Equal(t, 100, d.Members[0].Dollars)

	d, err = svc.GetByName(ctx, "Blue")
	require.NoError(t, err)
	assert.Equal(t, f.ID, d.ID)

	_, err = svc.GetByID(ctx, "no-such-id")
	assert.ErrorIs(t, err, ErrFactionNotFound)
	_, err = svc.GetByName(ctx, "Green")
	assert.ErrorIs(t, err, ErrFactionNotFound)
}

func TestJoin_Guards(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	f, err := svc.Create(ctx, "Red", ":red:")
	require.NoError(t, err)
	seedAccount(t, db, 1)

	assert.ErrorIs(t, svc.Join(ctx, "no-such-id", 1), ErrFactionNotFound)
	assert.ErrorIs(t, svc.Join(ctx, f.ID, 999), ErrAccountNotFound)

	require.NoError(t, svc.Join(ctx, f.ID, 1))

	// Already in a faction — even the same one.
	assert.ErrorIs(t, svc.Join(ctx, f.ID, 1), ErrAlreadyInFaction)
}

func TestLeave_NonLastMember_FactionRetained(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	f, err := svc.Create(ctx, "Red", ":red:")
	require.NoError(t, err)
	seedAccount(t, db, 1)
	seedAccount(t, db, 2)
	require.NoError(t, svc.Join(ctx, f.ID, 1))
	require.NoError(t, svc.Join(ctx, f.ID, 2))

	dissolved, err := svc.Leave(ctx, f.ID, 1)
	require.NoError(t, err)
	assert.False(t, dissolved)

	d, err := svc.GetByID(ctx, f.ID)
	require.NoError(t, err)
	require.Len(t, d.Members, 1)
	assert.EqualValues(t, 2, d.Members[0].ID)
}

func TestLeave_LastMember_FactionDissolved(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	f, err := svc.Create(ctx, "Red", ":red:")
	require.NoError(t, err)
	seedAccount(t, db, 1)
	require.NoError(t, svc.Join(ctx, f.ID, 1))

	dissolved, err := svc.Leave(ctx, f.ID, 1)
	require.NoError(t, err)
	assert.True(t, dissolved)

	_, err = svc.GetByID(ctx, f.ID)
	assert.ErrorIs(t, err, ErrFactionNotFound)

	var acc model.Account
	require.NoError(t, db.Where("id = ?", 1).First(&acc).Error)
	assert.Nil(t, acc.FactionID)
}

func TestLeave_ClearsUnconditionally(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	red, err := svc.Create(ctx, "Red", ":red:")
	require.NoError(t, err)
	blue, err := svc.Create(ctx, "Blue", ":blue:")
	require.NoError(t, err)
	seedAccount(t, db, 1)
	require.NoError(t, svc.Join(ctx, blue.ID, 1))

	// Leaving Red while a member of Blue still clears the account's
	// faction reference; Red has no members so it dissolves.
	dissolved, err := svc.Leave(ctx, red.ID, 1)
	require.NoError(t, err)
	assert.True(t, dissolved)

	var acc model.Account
	require.NoError(t, db.Where("id = ?", 1).First(&acc).Error)
	assert.Nil(t, acc.FactionID)
}

func TestLeave_Guards(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	f, err := svc.Create(ctx, "Red", ":red:")
	require.NoError(t, err)
	seedAccount(t, db, 1)

	_, err = svc.Leave(ctx, "no-such-id", 1)
	assert.ErrorIs(t, err, ErrFactionNotFound)
	_, err = svc.Leave(ctx, f.ID, 999)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
