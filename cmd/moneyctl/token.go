package main

import (
	"fmt"

	"money-mate/pkg/auth"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API token for a user (for testing and device setup)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, _ := cmd.Flags().GetString("user")
			if _, err := uuid.Parse(raw); err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			username, _ := cmd.Flags().GetString("username")

			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			token, err := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration).GenerateToken(raw, username, "")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("user", "", "User ID the token is issued for")
	cmd.Flags().String("username", "", "Optional username claim")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
