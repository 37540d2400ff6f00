package port

import (
	"context"

	"tally.com/internal/domain/entity"
)

// LedgerRepository is the port for ledger operations
type LedgerRepository interface {
	RecordTransaction(ctx context.Context, tx entity.Transaction) error
	CurrentBalances(ctx context.Context) ([]entity.Balance, error)
	Participants(ctx context.Context) (int, error)
	Capacity() int

	// WithExclusive runs fn with exclusive access to the ledger. No other
	// ledger operation is observed until fn returns.
	WithExclusive(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerTx is the view of the ledger handed to WithExclusive callbacks.
type LedgerTx interface {
	Balances() []entity.Balance
	SetBalance(participant string, amount int64)
}
