package entity

import "strings"

// Transaction records that Payer owes Payee the given Amount.
// Only its effect on the balances is kept.
type Transaction struct {
	Payer  string `json:"payer"`
	Payee  string `json:"payee"`
	Amount int64  `json:"amount"`
}

// Normalize trims surrounding whitespace from both names.
func (t Transaction) Normalize() Transaction {
	t.Payer = strings.TrimSpace(t.Payer)
	t.Payee = strings.TrimSpace(t.Payee)
	return t
}

// Validate validates the transaction
func (t Transaction) Validate() error {
	if t.Payer == "" || t.Payee == "" {
		return ErrMissingParticipant
	}
	if t.Payer == t.Payee {
		return ErrSelfTransaction
	}
	if t.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	return nil
}
