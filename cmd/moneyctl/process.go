package main

import (
	"fmt"
	"sort"

	"money-mate/internal/models"
	"money-mate/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run one processing pass over unprocessed messages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			userID, err := optionalUser(cmd)
			if err != nil {
				return err
			}

			a, _, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Processing.Process(cmd.Context(), service.ProcessRequest{Limit: limit, UserID: userID})
			if err != nil {
				return err
			}
			printProcessResult(cmd, result)
			return nil
		},
	}
	cmd.Flags().Int("limit", 0, "Maximum number of messages (0 = all)")
	cmd.Flags().String("user", "", "Only process this user's messages")
	return cmd
}

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show how many messages have been processed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := optionalUser(cmd)
			if err != nil {
				return err
			}

			a, _, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			status, err := a.Status.Status(cmd.Context(), userID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Processed %d of %d messages (%d%%), %d pending\n",
				status.Processed, status.Total, status.Percentage, status.Unprocessed)
			return nil
		},
	}
	cmd.Flags().String("user", "", "Only count this user's messages")
	return cmd
}

func optionalUser(cmd *cobra.Command) (*uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString("user")
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --user: %w", err)
	}
	return &id, nil
}

func printProcessResult(cmd *cobra.Command, r *service.ProcessResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processed %d messages, created %d transactions, filtered %d duplicates\n",
		r.Processed, r.TransactionsCreated, r.DuplicatesFiltered)

	categories := make([]string, 0, len(r.Categories))
	for c := range r.Categories {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Fprintf(out, "  %-16s %d\n", c, r.Categories[models.MessageCategory(c)])
	}
}
