package cli

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"secure-quiz-service/internal/app"
	"secure-quiz-service/internal/config"
	"secure-quiz-service/internal/domain"
)

// NewCreateAdminCmd bootstraps the first admin account.
func NewCreateAdminCmd(configPath *string) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account (password read from ADMIN_PASSWORD)",
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("ADMIN_PASSWORD")
			if password == "" {
				return errors.New("ADMIN_PASSWORD is not set")
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return errors.New("create-admin needs postgres.url; the in-memory store does not outlive the command")
			}

			store, closeStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			admins := app.NewAdminService(store, storeRetrier(cfg))
			user, err := admins.CreateUser(cmd.Context(), app.NewUser{
				Username: username,
				Password: password,
				Role:     domain.RoleAdmin,
			})
			if err != nil {
				if msg := domain.Message(err); msg != "" {
					return fmt.Errorf("create admin: %s", msg)
				}
				return err
			}
			log.Printf("admin %s created with id %s", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "admin", "admin username")
	return cmd
}
