package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tally.com/internal/infrastructure/prompt"
)

var settleCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "settle",
	Short: "Record transactions and print the payments that settle them.",
	Example: `  tally settle --group-size 3 --tx A:B:100 --tx C:A:50
  tally settle --tx Alice:Bob:20 --show-balances`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		cfg, appLogger, err := loadConfig()
		if err != nil {
			return err
		}

		groupSize, _ := cmd.Flags().GetInt("group-size")
		if !cmd.Flags().Changed("group-size") {
			groupSize = cfg.Group.DefaultSize
		}
		a, err := newApp(cfg, appLogger, groupSize)
		if err != nil {
			return err
		}

		args, _ := cmd.Flags().GetStringArray("tx")
		for i, arg := range args {
			tx, err := prompt.ParseTransaction(arg)
			if err != nil {
				return fmt.Errorf("transaction %d: %w", i+1, err)
			}
			if err := a.record.Execute(ctx, tx); err != nil {
				return fmt.Errorf("transaction %d (%s): %w", i+1, arg, err)
			}
		}

		if show, _ := cmd.Flags().GetBool("show-balances"); show {
			if err := a.printBalances(ctx, out); err != nil {
				return err
			}
		}

		return a.printSettlement(ctx, out)
	},
}

func init() { //nolint:gochecknoinits
	settleCmd.Flags().Int("group-size", 0, "maximum number of distinct people (default from group.defaultSize)")
	settleCmd.Flags().StringArray("tx", nil, "transaction as payer:payee:amount, repeatable")
	settleCmd.Flags().Bool("show-balances", false, "print balances before settling")
	rootCmd.AddCommand(settleCmd)
}
