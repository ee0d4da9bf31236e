package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// OpenDB opens the connection pool for env.DBDriver and pings it.
func OpenDB(ctx context.Context, env Env) (*sql.DB, error) {
	db, err := sql.Open(env.DBDriver, env.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", env.DBDriver, err)
	}

	if env.DBDriver == "sqlite" {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
	}
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", env.DBDriver, err)
	}
	return db, nil
}
