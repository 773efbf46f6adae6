package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/zk694441-ux/doctor-appointment-system/internal/config"
)

// App carries the shared dependencies of every handler: the connection
// pool, the loaded configuration and the root logger.
type App struct {
	DB  *pgxpool.Pool
	Cfg *config.Config
	Log zerolog.Logger
}

func New(db *pgxpool.Pool, cfg *config.Config, log zerolog.Logger) *App {
	return &App{DB: db, Cfg: cfg, Log: log}
}
