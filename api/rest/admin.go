package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/karumeo/gameledger/game/account"
	"github.com/karumeo/gameledger/model"
	"github.com/karumeo/gameledger/scheduler"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by AdminAuth middleware.
type AdminHandler struct {
	db       *gorm.DB
	accounts *account.Service
	sched    *scheduler.Scheduler
	logger   *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(db *gorm.DB, accounts *account.Service, sched *scheduler.Scheduler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, accounts: accounts, sched: sched, logger: logger}
}

// Metrics returns table row counts and scheduler state.
// GET /api/admin/metrics
func (h *AdminHandler) Metrics(c *gin.Context) {
	var accounts, items, factions, auditLogs int64
	h.db.Model(&model.Account{}).Count(&accounts)
	h.db.Model(&model.Item{}).Count(&items)
	h.db.Model(&model.Faction{}).Count(&factions)
	h.db.Model(&model.AuditLog{}).Count(&auditLogs)

	c.JSON(http.StatusOK, gin.H{
		"accounts":        accounts,
		"items":           items,
		"factions":        factions,
		"audit_logs":      auditLogs,
		"scheduler_tasks": h.sched.ListTickers(),
	})
}

// ListSchedulerTasks returns names of all registered ticker tasks.
// GET /api/admin/scheduler
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.ListTickers()})
}

// RefreshLeaderboard rebuilds the dollars leaderboard cache from the DB.
// POST /api/admin/leaderboard/refresh
func (h *AdminHandler) RefreshLeaderboard(c *gin.Context) {
	n, err := h.accounts.RefreshLeaderboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}
	h.logger.Info("leaderboard refreshed by admin", zap.Int("entries", n))
	c.JSON(http.StatusOK, gin.H{"entries": n})
}

// AdminAuth returns a middleware that checks the X-Admin-Key header.
// WARNING: if adminKey is empty all admin endpoints are disabled (503) so the
// server cannot be accidentally deployed without protection. Set a non-empty
// server.admin_key in config to enable admin routes.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "admin endpoints disabled: set server.admin_key in config"})
			return
		}
		key := c.GetHeader("X-Admin-Key")
		if key != adminKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
