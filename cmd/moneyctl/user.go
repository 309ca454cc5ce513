package main

import (
	"fmt"
	"time"

	"money-mate/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users for local development",
	}
	cmd.AddCommand(userCreateCmd(), userBalanceCmd())
	return cmd
}

func userCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")

			a, _, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			now := time.Now().UTC()
			user := &models.User{
				ID:             uuid.New(),
				Username:       username,
				Email:          email,
				AccountBalance: decimal.NullDecimal{},
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := a.Users.Create(cmd.Context(), user); err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), user.ID)
			return nil
		},
	}
	cmd.Flags().String("username", "", "Username")
	cmd.Flags().String("email", "", "Email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func userBalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show a user's account balance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := optionalUser(cmd)
			if err != nil {
				return err
			}
			if userID == nil {
				return fmt.Errorf("--user is required")
			}

			a, _, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.UserSvc.Balance(cmd.Context(), *userID)
			if err != nil {
				return err
			}
			if resp.Balance == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Balance unavailable")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", resp.Balance.StringFixed(2), resp.Source)
			return nil
		},
	}
	cmd.Flags().String("user", "", "User ID")
	return cmd
}
