package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"tally.com/internal/domain/entity"
	"tally.com/internal/infrastructure/prompt"
)

const (
	optionAdd = iota + 1
	optionBalances
	optionSettle
	optionExit
)

const menu = `
=================== Expense Management ===================
1. Add a Transaction
2. View Current Balances
3. Minimize Cash Flow
4. Exit Program
=========================================================`

var sessionCmd = &cobra.Command{ //nolint:gochecknoglobals
	Use:   "session",
	Short: "Start an interactive expense session.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, appLogger, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		s := &session{
			prompt: prompt.New(cmd.InOrStdin(), out),
			out:    out,
			clear:  screenClearer(out, cfg.Display.ClearScreen),
		}

		s.clear()
		fmt.Fprintln(out, "========== Welcome to Expense Management Tool ==========")

		groupSize, _ := cmd.Flags().GetInt("group-size")
		if !cmd.Flags().Changed("group-size") {
			groupSize, err = s.prompt.Int("Enter the total number of people: ",
				"Invalid input. Please enter a positive integer.", entity.ValidateGroupSize)
			if prompt.IsEOF(err) {
				return nil
			}
			if err != nil {
				return err
			}
		}

		s.app, err = newApp(cfg, appLogger, groupSize)
		if err != nil {
			return err
		}

		return s.run(cmd.Context())
	},
}

func init() { //nolint:gochecknoinits
	sessionCmd.Flags().Int("group-size", 0, "number of people in the group; prompted for when omitted")
	rootCmd.AddCommand(sessionCmd)
}

// session is the interactive menu loop.
type session struct {
	app    *app
	prompt *prompt.Prompter
	out    io.Writer
	clear  func()
}

func (s *session) run(ctx context.Context) error {
	for {
		fmt.Fprintln(s.out, menu)
		option, err := s.prompt.Int("Choose an option: ",
			"Invalid input. Please enter a number between 1 and 4.", nil)
		if prompt.IsEOF(err) {
			return nil
		}
		if err != nil {
			return err
		}

		s.clear()

		switch option {
		case optionAdd:
			err = s.addTransaction(ctx)
		case optionBalances:
			err = s.app.printBalances(ctx, s.out)
		case optionSettle:
			err = s.app.printSettlement(ctx, s.out)
		case optionExit:
			fmt.Fprintln(s.out, "Thank you for using the Expense Management Tool. Goodbye!")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid option. Please try again.")
		}

		if prompt.IsEOF(err) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// addTransaction asks for one transaction. Rejections are reported and the
// menu is shown again; only input errors are returned.
func (s *session) addTransaction(ctx context.Context) error {
	fmt.Fprintln(s.out, "\n========== Add a Transaction ==========")

	payer, err := s.prompt.Name("Enter the name of the person that has to pay: ")
	if err != nil {
		return err
	}
	payee, err := s.prompt.Name("Enter the name of the person that gets the money: ")
	if err != nil {
		return err
	}

	if payer == payee {
		fmt.Fprintln(s.out, "Invalid transaction as payer and payee are the same.")
		return nil
	}
	if err := s.app.ledger.CheckCapacity(ctx, payer, payee); err != nil {
		s.app.logger.LogDebug(ctx, "Transaction rejected", "error", err.Error())
		fmt.Fprintf(s.out, "Error: %v.\n", err)
		return nil
	}

	amount, err := s.prompt.Amount("Enter the amount: ")
	if err != nil {
		return err
	}

	tx := entity.Transaction{Payer: payer, Payee: payee, Amount: amount}
	if err := s.app.record.Execute(ctx, tx); err != nil {
		s.app.logger.LogDebug(ctx, "Transaction rejected", "error", err.Error())
		fmt.Fprintf(s.out, "Error: %v.\n", err)
		return nil
	}

	fmt.Fprintln(s.out, "Transaction added successfully!")
	if count, err := s.app.ledger.Participants(ctx); err == nil {
		fmt.Fprintf(s.out, "People in the group: %d of %d\n", count, s.app.ledger.Capacity())
	}
	return nil
}
