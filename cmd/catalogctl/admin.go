package main

import (
	"context"
	"fmt"
	"io"

	"sageset/web/internal/service"

	"github.com/spf13/cobra"
)

var (
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Create-admin stores a new account that can sign in to the admin console.

Example:
  catalogctl create-admin --email ops@sagesetfitness.com --password 'long secret'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		auth := service.NewAuthService(stores.Admins, cfg.JWT.Secret, cfg.JWT.Expiration)
		return runCreateAdmin(cmd.Context(), auth, adminEmail, adminPassword, cmd.OutOrStdout())
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "administrator email (required)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password, at least 8 characters (required)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(ctx context.Context, auth service.AuthService, email, password string, out io.Writer) error {
	user, err := auth.CreateAdmin(ctx, email, password)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Fprintf(out, "Created admin %s (%s)\n", user.Email, user.ID.Hex())
	return nil
}
