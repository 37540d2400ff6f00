package prompt

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tally.com/internal/domain/entity"
)

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// ParseAmount parses a whole currency amount. Trailing zero decimals such as
// "100.00" are accepted; fractional values are not.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", entity.ErrInvalidNumericInput, s)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%w: %q is not a whole amount", entity.ErrInvalidNumericInput, s)
	}
	if d.Abs().GreaterThan(maxAmount) {
		return 0, fmt.Errorf("%w: %q is out of range", entity.ErrInvalidNumericInput, s)
	}
	return d.IntPart(), nil
}

// ParseInt parses a menu choice or a head count.
func ParseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", entity.ErrInvalidNumericInput, s)
	}
	return n, nil
}

// ParseTransaction parses "payer:payee:amount".
func ParseTransaction(s string) (entity.Transaction, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return entity.Transaction{}, fmt.Errorf("%w: %q, want payer:payee:amount", entity.ErrInvalidTransaction, s)
	}
	amount, err := ParseAmount(parts[2])
	if err != nil {
		return entity.Transaction{}, err
	}
	tx := entity.Transaction{Payer: parts[0], Payee: parts[1], Amount: amount}.Normalize()
	return tx, tx.Validate()
}
