package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/community-amenities/internal/config"
	"github.com/iliyamo/community-amenities/internal/model"
	"github.com/iliyamo/community-amenities/internal/repository"
	"github.com/iliyamo/community-amenities/internal/utils"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

// newUserCreateCmd creates an account with any role.  When the email is
// already registered only the role is changed, so the command can promote
// an existing resident.
func newUserCreateCmd() *cobra.Command {
	var email, password, roleName, firstName, lastName string

	c := &cobra.Command{
		Use:   "create",
		Short: "Create a user or change the role of an existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			role, ok := model.ParseRole(roleName)
			if !ok {
				return fmt.Errorf("unknown role %q", roleName)
			}
			email = strings.ToLower(strings.TrimSpace(email))
			if !strings.Contains(email, "@") {
				return fmt.Errorf("invalid email %q", email)
			}
			if len(password) < utils.MinPasswordLength {
				return fmt.Errorf("password must be at least %d characters", utils.MinPasswordLength)
			}

			cfg := config.LoadDatabase()
			db, err := openDB(cfg)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer db.Close()

			users := repository.NewUserRepo(db)
			ctx := cmd.Context()
			id, err := users.Create(ctx, repository.NewUser{
				Email:     email,
				Password:  password,
				FirstName: firstName,
				LastName:  lastName,
				Role:      role,
			}, cfg.BcryptCost)
			switch {
			case errors.Is(err, repository.ErrEmailExists):
				if err := users.SetRole(ctx, email, role); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s to role %s\n", email, role)
				return nil
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s, %s)\n", id, email, role)
			return nil
		},
	}

	c.Flags().StringVar(&email, "email", "", "email address")
	c.Flags().StringVar(&password, "password", "", "initial password")
	c.Flags().StringVar(&roleName, "role", string(model.RoleSuperAdmin), "RESIDENT, ADMINISTRATOR or SUPERADMIN")
	c.Flags().StringVar(&firstName, "first-name", "", "given name")
	c.Flags().StringVar(&lastName, "last-name", "", "family name")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}
