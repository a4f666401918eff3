package cmd

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/krkdev/contacts-api/internal/config"
	"github.com/krkdev/contacts-api/internal/db"
	"github.com/krkdev/contacts-api/internal/logger"
)

// open loads the configuration and connects to its database.
func open(ctx context.Context) (*config.Config, *sqlx.DB, func(), error) {
	cfg := config.Load()
	flush := logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	database, err := db.Init(ctx, cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		flush()
		return nil, nil, nil, err
	}

	closeFn := func() {
		_ = database.Close()
		flush()
	}
	return cfg, database, closeFn, nil
}
