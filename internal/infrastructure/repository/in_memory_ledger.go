package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"tally.com/internal/domain/entity"
	"tally.com/internal/domain/port"
	"tally.com/internal/infrastructure/logger"
)

// InMemoryLedger implements the LedgerRepository port
type InMemoryLedger struct {
	mu       sync.RWMutex
	capacity int
	net      map[string]int64
	logger   logger.Logger
}

var _ port.LedgerRepository = (*InMemoryLedger)(nil)

// NewInMemoryLedger creates an empty ledger for a group of at most capacity people
func NewInMemoryLedger(capacity int, logger logger.Logger) (*InMemoryLedger, error) {
	if err := entity.ValidateGroupSize(capacity); err != nil {
		return nil, err
	}
	return &InMemoryLedger{
		capacity: capacity,
		net:      make(map[string]int64, capacity),
		logger:   logger,
	}, nil
}

// Capacity returns the configured group size
func (l *InMemoryLedger) Capacity() int {
	return l.capacity
}

// RecordTransaction applies tx to the balances. On error the ledger is unchanged.
func (l *InMemoryLedger) RecordTransaction(ctx context.Context, tx entity.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx = tx.Normalize()
	if err := tx.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	payerBalance, payerKnown := l.net[tx.Payer]
	payeeBalance, payeeKnown := l.net[tx.Payee]

	if err := l.capacityErrLocked(tx, payerKnown, payeeKnown); err != nil {
		l.logger.LogWarning(ctx, "Transaction rejected: group is full",
			"payer", tx.Payer,
			"payee", tx.Payee,
			"participants", len(l.net),
			"capacity", l.capacity)
		return err
	}

	// Balances stay strictly above MinInt64 so they can always be negated.
	if payerBalance < math.MinInt64+1+tx.Amount || payeeBalance > math.MaxInt64-tx.Amount {
		return entity.ErrAmountOverflow
	}

	l.net[tx.Payer] = payerBalance - tx.Amount
	l.net[tx.Payee] = payeeBalance + tx.Amount

	if sum := l.sumLocked(); sum != 0 {
		l.rollbackLocked(tx, payerBalance, payerKnown, payeeBalance, payeeKnown)
		l.logger.LogError(ctx, "Ledger conservation violated", entity.ErrUnbalancedLedger, "sum", sum)
		return fmt.Errorf("%w: sum is %d", entity.ErrUnbalancedLedger, sum)
	}

	l.logger.LogInfo(ctx, "Transaction recorded",
		"payer", tx.Payer,
		"payee", tx.Payee,
		"amount", tx.Amount,
		"participants", len(l.net))

	return nil
}

// CheckCapacity reports whether a transaction between payer and payee would
// fit in the group, without recording anything.
func (l *InMemoryLedger) CheckCapacity(ctx context.Context, payer, payee string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := entity.Transaction{Payer: payer, Payee: payee}.Normalize()

	l.mu.RLock()
	defer l.mu.RUnlock()

	_, payerKnown := l.net[tx.Payer]
	_, payeeKnown := l.net[tx.Payee]
	return l.capacityErrLocked(tx, payerKnown, payeeKnown)
}

func (l *InMemoryLedger) capacityErrLocked(tx entity.Transaction, payerKnown, payeeKnown bool) error {
	added := 0
	if !payerKnown {
		added++
	}
	if !payeeKnown && tx.Payee != tx.Payer {
		added++
	}
	if len(l.net)+added <= l.capacity {
		return nil
	}
	return fmt.Errorf("%w: adding %s exceeds the total number of specified people (%d)",
		entity.ErrGroupCapacityExceeded, l.newcomers(tx, payerKnown, payeeKnown), l.capacity)
}

// rollbackLocked restores the payer and payee entries to their state before tx.
func (l *InMemoryLedger) rollbackLocked(tx entity.Transaction, payerBalance int64, payerKnown bool, payeeBalance int64, payeeKnown bool) {
	restore := func(name string, balance int64, known bool) {
		if known {
			l.net[name] = balance
			return
		}
		delete(l.net, name)
	}
	restore(tx.Payer, payerBalance, payerKnown)
	restore(tx.Payee, payeeBalance, payeeKnown)
}

func (l *InMemoryLedger) newcomers(tx entity.Transaction, payerKnown, payeeKnown bool) string {
	switch {
	case !payerKnown && !payeeKnown:
		return fmt.Sprintf("'%s' and '%s'", tx.Payer, tx.Payee)
	case !payerKnown:
		return fmt.Sprintf("'%s'", tx.Payer)
	default:
		return fmt.Sprintf("'%s'", tx.Payee)
	}
}

// CurrentBalances returns every known participant's balance ordered by name
func (l *InMemoryLedger) CurrentBalances(ctx context.Context) ([]entity.Balance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.snapshotLocked(), nil
}

// Participants returns the number of distinct people seen so far
func (l *InMemoryLedger) Participants(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.net), nil
}

// WithExclusive runs fn while holding the write lock
func (l *InMemoryLedger) WithExclusive(ctx context.Context, fn func(tx port.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return fn(ledgerTx{l: l})
}

func (l *InMemoryLedger) snapshotLocked() []entity.Balance {
	balances := make([]entity.Balance, 0, len(l.net))
	for name, amount := range l.net {
		balances = append(balances, entity.Balance{Participant: name, Amount: amount})
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Participant < balances[j].Participant
	})
	return balances
}

func (l *InMemoryLedger) sumLocked() int64 {
	var sum int64
	for _, amount := range l.net {
		sum += amount
	}
	return sum
}

// ledgerTx is only valid inside a WithExclusive callback.
type ledgerTx struct {
	l *InMemoryLedger
}

func (t ledgerTx) Balances() []entity.Balance {
	return t.l.snapshotLocked()
}

// SetBalance overwrites the balance of a known participant. Unknown names
// are ignored so the participant set never grows outside RecordTransaction.
func (t ledgerTx) SetBalance(participant string, amount int64) {
	if _, ok := t.l.net[participant]; !ok {
		return
	}
	t.l.net[participant] = amount
}
