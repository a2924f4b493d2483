package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/karumeo/gameledger/api/rest"
	"github.com/karumeo/gameledger/audit"
	"github.com/karumeo/gameledger/cache"
	"github.com/karumeo/gameledger/config"
	"github.com/karumeo/gameledger/game/account"
	"github.com/karumeo/gameledger/game/faction"
	"github.com/karumeo/gameledger/game/item"
	mw "github.com/karumeo/gameledger/middleware"
	"github.com/karumeo/gameledger/scheduler"
	"github.com/karumeo/gameledger/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// TestServer wraps a real HTTP server with the full economy stack wired
// together the same way main.go does it.
type TestServer struct {
	DB     *gorm.DB
	Cache  cache.Cache
	Audit  *audit.Service
	Server *httptest.Server
	URL    string
	Sec    config.SecurityConfig
}

const testPassKey = "integration-test-passkey"

// NewTestServer creates a fully wired server for integration testing.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	ref := testutil.SetupTestReference(t)
	logger := zap.NewNop()

	sec := config.SecurityConfig{
		PassKey:        testPassKey,
		JWTSecret:      "integration-test-secret",
		TokenTTL:       time.Hour,
		RateLimitRPS:   1000,
		RateLimitBurst: 2000,
	}

	itemSvc := item.NewService(db, ref, logger)
	accountSvc := account.NewService(db, c, logger)
	factionSvc := faction.NewService(db, logger)
	auditSvc := audit.New(db, logger)
	sched := scheduler.New(logger)
	t.Cleanup(sched.Stop)

	r := gin.New()
	r.Use(mw.TraceID(), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(sec.RateLimitRPS), sec.RateLimitBurst))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes (mirrors main.go) ----
	authH := apirest.NewAuthHandler(c, sec)
	itemH := apirest.NewItemHandler(itemSvc)
	accountH := apirest.NewAccountHandler(accountSvc, itemSvc)
	factionH := apirest.NewFactionHandler(factionSvc)
	refH := apirest.NewReferenceHandler(ref)
	adminH := apirest.NewAdminHandler(db, accountSvc, sched, logger)

	api := r.Group("/api")
	{
		api.POST("/auth/token", authH.Token)

		authed := api.Group("", mw.Auth(sec, c), mw.Audit(auditSvc))

		itemsG := authed.Group("/items")
		itemsG.GET("/:id", itemH.Get)
		itemsG.POST("", itemH.Create)
		itemsG.POST("/:id/transfer/:account_id", itemH.Transfer)
		itemsG.POST("/:id/equip", itemH.Equip)
		itemsG.POST("/:id/drop", itemH.Drop)

		accountsG := authed.Group("/accounts")
		accountsG.GET("/leaderboard", accountH.Leaderboard)
		accountsG.POST("/:id", accountH.Create)
		accountsG.GET("/:id", accountH.Get)
		accountsG.POST("/:id/hp", accountH.AdjustHP)
		accountsG.POST("/:id/dollars", accountH.AdjustDollars)

		factionsG := authed.Group("/factions")
		factionsG.POST("", factionH.Create)
		factionsG.GET("/name/:name", factionH.GetByName)
		factionsG.GET("/:id", factionH.Get)
		factionsG.POST("/:id/join/:account_id", factionH.Join)
		factionsG.POST("/:id/leave/:account_id", factionH.Leave)

		refG := authed.Group("/reference")
		refG.GET("/rarities/name/:name", refH.RarityByName)
		refG.GET("/rarities/:id", refH.RarityByID)
		refG.GET("/types/name/:name", refH.TypeByName)
		refG.GET("/types/:id", refH.TypeByID)

		adminG := api.Group("/admin")
		adminG.Use(apirest.AdminAuth("integration-admin-key"))
		adminG.GET("/metrics", adminH.Metrics)
		adminG.GET("/scheduler", adminH.ListSchedulerTasks)
		adminG.POST("/leaderboard/refresh", adminH.RefreshLeaderboard)
	}

	server := httptest.NewServer(r)

	ts := &TestServer{
		DB:     db,
		Cache:  c,
		Audit:  auditSvc,
		Server: server,
		URL:    server.URL,
		Sec:    sec,
	}
	t.Cleanup(ts.Close)
	return ts
}

// Close shuts down the test server and flushes the audit trail.
func (ts *TestServer) Close() {
	ts.Audit.Stop(nil)
	ts.Server.Close()
}

// --- HTTP helpers ---

// PostJSON sends a POST request with JSON body; the shared passkey is
// always attached.
func (ts *TestServer) PostJSON(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest("POST", ts.URL+path, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(mw.PassKeyHeader, testPassKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// Get sends a GET request with the shared passkey attached.
func (ts *TestServer) Get(t *testing.T, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest("GET", ts.URL+path, nil)
	require.NoError(t, err)
	req.Header.Set(mw.PassKeyHeader, testPassKey)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// ReadJSON reads and decodes a JSON response body into the given target.
func ReadJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, target), "body: %s", string(data))
}

// --- Domain helpers ---

// CreateAccount creates an account and asserts success.
func (ts *TestServer) CreateAccount(t *testing.T, id int64) {
	t.Helper()
	resp := ts.PostJSON(t, "/api/accounts/"+itoa(id), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

// CreateItems creates amount units of an item and returns their ids.
func (ts *TestServer) CreateItems(t *testing.T, name string, typeID, amount int, ownerID int64) []string {
	t.Helper()
	resp := ts.PostJSON(t, "/api/items", map[string]interface{}{
		"name":      name,
		"type_id":   typeID,
		"rarity_id": 1,
		"amount":    amount,
		"owner_id":  ownerID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var result map[string]interface{}
	ReadJSON(t, resp, &result)
	raw := result["ids"].([]interface{})
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		ids = append(ids, v.(string))
	}
	return ids
}

// CreateFaction creates a faction and returns its id.
func (ts *TestServer) CreateFaction(t *testing.T, name, emoji string) string {
	t.Helper()
	resp := ts.PostJSON(t, "/api/factions", map[string]string{
		"name":       name,
		"emoji_name": emoji,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var result map[string]interface{}
	ReadJSON(t, resp, &result)
	return result["id"].(string)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
