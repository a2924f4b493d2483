package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/karumeo/gameledger/api/rest"
	"github.com/karumeo/gameledger/audit"
	"github.com/karumeo/gameledger/cache"
	"github.com/karumeo/gameledger/config"
	dbadapter "github.com/karumeo/gameledger/db"
	"github.com/karumeo/gameledger/game/account"
	"github.com/karumeo/gameledger/game/faction"
	"github.com/karumeo/gameledger/game/item"
	mw "github.com/karumeo/gameledger/middleware"
	"github.com/karumeo/gameledger/model"
	"github.com/karumeo/gameledger/reference"
	"github.com/karumeo/gameledger/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// Warn loudly if endpoints will be disabled.
	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}
	if cfg.Security.PassKey == "" {
		logger.Warn("security.pass_key is not set; all API calls will be rejected")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(nil)

	// ---- Cache ----
	c, err := cache.New(cache.Config{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Reference data ----
	ref := reference.NewLoader(cfg.Reference.DataPath)
	if err := ref.Load(); err != nil {
		log.Fatalf("reference data: %v", err)
	}
	logger.Info("Reference data loaded",
		zap.Int("rarities", len(ref.Rarities)),
		zap.Int("types", len(ref.Types)))

	// ---- Services ----
	itemSvc := item.NewService(db, ref, logger)
	accountSvc := account.NewService(db, c, logger)
	factionSvc := faction.NewService(db, logger)

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	sched.AddTicker("leaderboard_refresh", 5*time.Minute, func() {
		if _, err := accountSvc.RefreshLeaderboard(context.Background()); err != nil {
			logger.Warn("leaderboard refresh failed", zap.Error(err))
		}
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(c, cfg.Security)
	itemH := apirest.NewItemHandler(itemSvc)
	accountH := apirest.NewAccountHandler(accountSvc, itemSvc)
	factionH := apirest.NewFactionHandler(factionSvc)
	refH := apirest.NewReferenceHandler(ref)
	adminH := apirest.NewAdminHandler(db, accountSvc, sched, logger)

	api := r.Group("/api")
	{
		api.POST("/auth/token", authH.Token)

		authed := api.Group("", mw.Auth(cfg.Security, c), mw.Audit(auditSvc))

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
		adminG.Use(mw.IPAllowlist(cfg.Security.AdminAllowCIDR))
		adminG.Use(apirest.AdminAuth(cfg.Server.AdminKey))
		adminG.GET("/metrics", adminH.Metrics)
		adminG.GET("/scheduler", adminH.ListSchedulerTasks)
		adminG.POST("/leaderboard/refresh", adminH.RefreshLeaderboard)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
