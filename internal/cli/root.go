// Package cli wires the catalogapi commands.
package cli

import (
	"context"
	"database/sql"
	"fmt"

	"catalogapi/internal/config"
	"catalogapi/internal/db"
	"catalogapi/internal/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogapi",
		Short:         "Users, categories and products REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd())
	return root
}

// runtime is what every command needs before doing real work.
type runtime struct {
	env config.Env
	log *zap.Logger
	db  *sql.DB
}

func (rt runtime) close() {
	_ = rt.db.Close()
	_ = rt.log.Sync()
}

func bootstrap(ctx context.Context) (runtime, error) {
	env := config.LoadEnv()
	if err := env.Validate(); err != nil {
		return runtime{}, fmt.Errorf("config: %w", err)
	}
	log := utils.NewLogger(env.AppEnv, env.LogLevel)

	conn, err := config.OpenDB(ctx, env)
	if err != nil {
		_ = log.Sync()
		return runtime{}, err
	}
	log.Info("database connected", zap.String("driver", env.DBDriver))
	return runtime{env: env, log: log, db: conn}, nil
}

func (rt runtime) migrate(ctx context.Context) (int, error) {
	return db.Migrate(ctx, rt.db, db.Dialect(rt.env.DBDriver), rt.log)
}
