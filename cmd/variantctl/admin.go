package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/GTDGit/gtd_catalog/internal/config"
	"github.com/GTDGit/gtd_catalog/internal/database"
	"github.com/GTDGit/gtd_catalog/internal/repository"
	"github.com/GTDGit/gtd_catalog/internal/service"
)

const minPasswordLen = 8

// openAdminStore connects to the catalog database configured in the
// environment. Tests replace it.
var openAdminStore = func(ctx context.Context) (service.AdminUserStore, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Connect(ctx, &cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewAdminUserRepository(db), func() { _ = db.Close() }, nil
}

func newCreateAdminCmd(opts *options) *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a catalog admin account",
		Long: `Creates an active admin in the database named by DB_* environment variables.
The password is read from the first line of stdin.`,
		Example: `  printf '%s\n' "$ADMIN_PASSWORD" | variantctl create-admin --email ops@gtd.co.id --name Ops`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email = strings.TrimSpace(email)
			if !strings.Contains(email, "@") {
				return fmt.Errorf("invalid email %q", email)
			}

			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password from stdin: %w", err)
			}
			password := strings.TrimRight(line, "\r\n")
			if len(password) < minPasswordLen {
				return fmt.Errorf("password must be at least %d characters", minPasswordLen)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			store, closeStore, err := openAdminStore(ctx)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer closeStore()

			user, err := service.NewAdminAuthService(store).CreateAdmin(ctx, email, password, strings.TrimSpace(name))
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			return render(cmd.OutOrStdout(), opts.output, user)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin login email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
