package main

import (
	"context"
	"time"

	"github.com/civicconnect/civicconnect-be/db/sqldb"
	"github.com/civicconnect/civicconnect-be/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateTimeout time.Duration

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Long: `Apply the embedded schema for the database named by DATABASE_URL
(postgres:// or mysql://). Every statement is idempotent, so running it
again is safe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd.Context())
	},
}

func init() {
	migrateCmd.Flags().DurationVar(&migrateTimeout, "timeout", 2*time.Minute, "give up after this long")
}

func runMigrate(ctx context.Context) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	database, err := sqldb.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(ctx, migrateTimeout)
	defer cancel()
	applied, err := database.Migrate(ctx)
	if err != nil {
		return err
	}
	logger.Get().Info("schema applied",
		zap.String("dialect", string(database.Dialect())),
		zap.Int("statements", applied))
	return nil
}
