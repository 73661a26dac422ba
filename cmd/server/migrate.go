package main

import (
	"context"
	"fmt"

	config "github.com/maheshrc27/selfpost/configs"
	"github.com/maheshrc27/selfpost/internal/repository"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create database tables",
	Long:  "Creates the users, social_profiles, posts, post_social_mappings and analytics tables if they do not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer closeDB(db)

		fmt.Println("Running migrations...")
		if err := repository.Migrate(context.Background(), db); err != nil {
			return err
		}
		fmt.Println("Migrations complete")
		return nil
	},
}
