package db

import (
	"fmt"

	"github.com/karumeo/gameledger/config"
	dbmysql "github.com/karumeo/gameledger/db/mysql"
	dbpostgres "github.com/karumeo/gameledger/db/postgres"
	dbsqlite "github.com/karumeo/gameledger/db/sqlite"
	"gorm.io/gorm"
)

const (
	ModeSQLite   = "sqlite"
	ModeMySQL    = "mysql"
	ModePostgres = "postgres"
)

// Open returns a *gorm.DB for the configured database mode.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Mode {
	case ModeSQLite:
		return dbsqlite.Open(cfg.SQLitePath)
	case ModeMySQL:
		return dbmysql.Open(cfg.MySQLDSN, cfg.PoolMaxOpen, cfg.PoolMaxIdle, cfg.PoolMaxLifetime)
	case ModePostgres:
		return dbpostgres.Open(cfg.PostgresDSN, cfg.PoolMaxOpen, cfg.PoolMaxIdle, cfg.PoolMaxLifetime)
	default:
		return nil, fmt.Errorf("db: unknown mode %q", cfg.Mode)
	}
}
