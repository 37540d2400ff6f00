// Package report renders ledger state and settlement output for the console.
package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"tally.com/internal/domain/entity"
)

const NoTransactionsNeeded = "No transactions are needed."

const (
	personWidth = 20
	ruleWidth   = 54
)

// FormatBalances renders balances as a two-column table.
func FormatBalances(balances []entity.Balance, currency string) string {
	var b strings.Builder
	title := " Current Balances "
	side := (ruleWidth - len(title)) / 2
	fmt.Fprintf(&b, "\n%s%s%s\n", strings.Repeat("=", side), title, strings.Repeat("=", ruleWidth-side-len(title)))
	fmt.Fprintf(&b, "%-*s%s\n", personWidth, "Person", fmt.Sprintf("Balance (%s)", currency))
	b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	for _, bal := range balances {
		fmt.Fprintf(&b, "%-*s%s\n", personWidth, bal.Participant, humanize.Comma(bal.Amount))
	}
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	return b.String()
}

// FormatInstruction renders one settlement payment.
func FormatInstruction(ins entity.Instruction, currency string) string {
	return fmt.Sprintf("%s will pay %s %s to %s", ins.From, humanize.Comma(ins.Amount), currency, ins.To)
}

// FormatSummary renders the trailing instruction count.
func FormatSummary(count int) string {
	return fmt.Sprintf("Total number of transactions made were: %d", count)
}
