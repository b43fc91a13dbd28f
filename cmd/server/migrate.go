package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pocket-chat-server/internal/config"
	"pocket-chat-server/internal/database"
	"pocket-chat-server/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "执行数据库迁移",
	Long:  `执行所有尚未记录的数据库迁移，打印本次执行的版本号后退出。`,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.Open(cfg.Database, false)
	if err != nil {
		return err
	}
	defer database.Close(db)

	ran, err := database.Migrate(cmd.Context(), db, log)
	if err != nil {
		return err
	}

	if len(ran) == 0 {
		fmt.Printf("database is up to date (version %d)\n", database.LatestVersion())
		return nil
	}
	for _, v := range ran {
		fmt.Printf("applied migration %d\n", v)
	}
	return nil
}
