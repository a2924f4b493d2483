package rest_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/karumeo/gameledger/api/rest"
	"github.com/karumeo/gameledger/game/faction"
	"github.com/karumeo/gameledger/model"
	"github.com/karumeo/gameledger/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newFactionRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	h := rest.NewFactionHandler(faction.NewService(db, zap.NewNop()))

	r := gin.New()
	r.POST("/api/factions", h.Create)
	r.GET("/api/factions/name/:name", h.GetByName)
	r.GET("/api/factions/:id", h.Get)
	r.POST("/api/factions/:id/join/:account_id", h.Join)
	r.POST("/api/factions/:id/leave/:account_id", h.Leave)
	return r, db
}

func createFaction(t *testing.T, r *gin.Engine, name, emoji string) string {
	t.Helper()
	w := postJSON(r, "/api/factions", map[string]string{"name": name, "emoji_name": emoji})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["id"].(string)
}

func TestFactionCreate(t *testing.T) {
	r, _ := newFactionRouter(t)

	w := postJSON(r, "/api/factions", map[string]string{"name": "Red", "emoji_name": ":red:"})
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "Red", resp["name"])
	assert.Equal(t, ":red:", resp["emoji_name"])
	assert.NotEmpty(t, resp["id"])
}

func TestFactionCreate_NameTaken(t *testing.T) {
	r, _ := newFactionRouter(t)

	createFaction(t, r, "Red", ":red:")
	w := postJSON(r, "/api/factions", map[string]string{"name": "Red", "emoji_name": ":other:"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFactionGet_ByIDAndName(t *testing.T) {
	r, db := newFactionRouter(t)
	seedAccount(t, db, 1)

	id := createFaction(t, r, "Red", ":red:")
	require.Equal(t, http.StatusOK, postJSON(r, "/api/factions/"+id+"/join/1", nil).Code)

	w := getReq(r, "/api/factions/"+id)
	require.Equal(t, http.StatusOK, w.Code)
	members := decode(t, w)["members"].([]interface{})
	require.Len(t, members, 1)
	m := members[0].(map[string]interface{})
	assert.Equal(t, float64(1), m["id"])
	assert.Equal(t, float64(100), m["dollars"])

	w = getReq(r, "/api/factions/name/Red")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decode(t, w)["id"])
}

func TestFactionGet_NotFound(t *testing.T) {
	r, _ := newFactionRouter(t)

	assert.Equal(t, http.StatusNotFound, getReq(r, "/api/factions/no-such-id").Code)
	assert.Equal(t, http.StatusNotFound, getReq(r, "/api/factions/name/Nobody").Code)
}

func TestFactionJoin_AlreadyInFaction(t *testing.T) {
	r, db := newFactionRouter(t)
	seedAccount(t, db, 1)

	red := createFaction(t, r, "Red", ":red:")
	blue := createFaction(t, r, "Blue", ":blue:")

	require.Equal(t, http.StatusOK, postJSON(r, "/api/factions/"+red+"/join/1", nil).Code)
	assert.Equal(t, http.StatusForbidden, postJSON(r, "/api/factions/"+blue+"/join/1", nil).Code)
}

func TestFactionJoin_MissingParties(t *testing.T) {
	r, db := newFactionRouter(t)
	seedAccount(t, db, 1)

	id := createFaction(t, r, "Red", ":red:")
	assert.Equal(t, http.StatusNotFound, postJSON(r, "/api/factions/no-such-id/join/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, postJSON(r, "/api/factions/"+id+"/join/999", nil).Code)
}

// Full membership lifecycle: two members join, the first leave keeps the
// faction (200), the last leave dissolves it (201).
func TestFactionLeave_Lifecycle(t *testing.T) {
	r, db := newFactionRouter(t)
	seedAccount(t, db, 1)
	seedAccount(t, db, 2)

	id := createFaction(t, r, "Red", ":red:")
	require.Equal(t, http.StatusOK, postJSON(r, "/api/factions/"+id+"/join/1", nil).Code)
	require.Equal(t, http.StatusOK, postJSON(r, "/api/factions/"+id+"/join/2", nil).Code)

	w := postJSON(r, "/api/factions/"+id+"/leave/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["dissolved"])

	w = postJSON(r, "/api/factions/"+id+"/leave/2", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, decode(t, w)["dissolved"])

	var count int64
	db.Model(&model.Faction{}).Count(&count)
	assert.Zero(t, count, "last leave deletes the faction")
}

func TestFactionLeave_NotFound(t *testing.T) {
	r, db := newFactionRouter(t)
	seedAccount(t, db, 1)

	id := createFaction(t, r, "Red", ":red:")
	assert.Equal(t, http.StatusNotFound, postJSON(r, "/api/factions/no-such-id/leave/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, postJSON(r, "/api/factions/"+id+"/leave/999", nil).Code)
}
