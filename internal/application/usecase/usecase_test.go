package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"tally.com/internal/domain/entity"
	"tally.com/internal/domain/port"
	"tally.com/internal/infrastructure/logger"
	"tally.com/internal/infrastructure/repository"
)

// mockLedgerRepository is a mock implementation of LedgerRepository
type mockLedgerRepository struct {
	recordFunc    func(ctx context.Context, tx entity.Transaction) error
	balancesFunc  func(ctx context.Context) ([]entity.Balance, error)
	exclusiveFunc func(ctx context.Context, fn func(tx port.LedgerTx) error) error
}

func (m *mockLedgerRepository) RecordTransaction(ctx context.Context, tx entity.Transaction) error {
	if m.recordFunc != nil {
		return m.recordFunc(ctx, tx)
	}
	return nil
}

func (m *mockLedgerRepository) CurrentBalances(ctx context.Context) ([]entity.Balance, error) {
	if m.balancesFunc != nil {
		return m.balancesFunc(ctx)
	}
	return nil, nil
}

func (m *mockLedgerRepository) Participants(ctx context.Context) (int, error) {
	return 0, nil
}

func (m *mockLedgerRepository) Capacity() int {
	return entity.MaxGroupSize
}

func (m *mockLedgerRepository) WithExclusive(ctx context.Context, fn func(tx port.LedgerTx) error) error {
	if m.exclusiveFunc != nil {
		return m.exclusiveFunc(ctx, fn)
	}
	return fn(&mockLedgerTx{})
}

// mockLedgerTx records write-backs
type mockLedgerTx struct {
	balances []entity.Balance
	written  map[string]int64
}

func (m *mockLedgerTx) Balances() []entity.Balance {
	return m.balances
}

func (m *mockLedgerTx) SetBalance(participant string, amount int64) {
	if m.written == nil {
		m.written = make(map[string]int64)
	}
	m.written[participant] = amount
}

func newLedger(t *testing.T, capacity int) *repository.InMemoryLedger {
	t.Helper()
	ledger, err := repository.NewInMemoryLedger(capacity, logger.NewLogger())
	if err != nil {
		t.Fatalf("NewInMemoryLedger() error = %v", err)
	}
	return ledger
}

func TestRecordTransactionUseCase_Execute(t *testing.T) {
	tests := []struct {
		name            string
		tx              entity.Transaction
		repositoryError error
		wantErr         error
		wantForwarded   bool
	}{
		{
			name:          "valid transaction",
			tx:            entity.Transaction{Payer: "A", Payee: "B", Amount: 100},
			wantForwarded: true,
		},
		{
			name:    "same payer and payee",
			tx:      entity.Transaction{Payer: "A", Payee: "A", Amount: 10},
			wantErr: entity.ErrSelfTransaction,
		},
		{
			name:    "same payer and payee after trimming",
			tx:      entity.Transaction{Payer: "A ", Payee: " A", Amount: 10},
			wantErr: entity.ErrSelfTransaction,
		},
		{
			name:    "non-positive amount",
			tx:      entity.Transaction{Payer: "A", Payee: "B", Amount: -1},
			wantErr: entity.ErrNonPositiveAmount,
		},
		{
			name:            "repository error",
			tx:              entity.Transaction{Payer: "A", Payee: "D", Amount: 1},
			repositoryError: entity.ErrGroupCapacityExceeded,
			wantErr:         entity.ErrGroupCapacityExceeded,
			wantForwarded:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forwarded := false
			repo := &mockLedgerRepository{
				recordFunc: func(ctx context.Context, tx entity.Transaction) error {
					forwarded = true
					return tt.repositoryError
				},
			}

			err := NewRecordTransactionUseCase(repo).Execute(context.Background(), tt.tx)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("RecordTransactionUseCase.Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if forwarded != tt.wantForwarded {
				t.Errorf("repository called = %v, want %v", forwarded, tt.wantForwarded)
			}
		})
	}
}

func TestGetBalancesUseCase_Execute(t *testing.T) {
	tests := []struct {
		name          string
		repositoryRes []entity.Balance
		repositoryErr error
		wantErr       bool
		wantLen       int
	}{
		{
			name: "balances returned in order",
			repositoryRes: []entity.Balance{
				{Participant: "A", Amount: -100},
				{Participant: "B", Amount: 100},
			},
			wantLen: 2,
		},
		{
			name:    "empty ledger",
			wantLen: 0,
		},
		{
			name:          "repository error",
			repositoryErr: errors.New("repository error"),
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockLedgerRepository{
				balancesFunc: func(ctx context.Context) ([]entity.Balance, error) {
					return tt.repositoryRes, tt.repositoryErr
				},
			}

			result, err := NewGetBalancesUseCase(repo).Execute(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetBalancesUseCase.Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(result) != tt.wantLen {
				t.Errorf("result length = %d, want %d", len(result), tt.wantLen)
			}
		})
	}
}

func TestSettleLedgerUseCase_WritesBackFinalBalances(t *testing.T) {
	ledgerTx := &mockLedgerTx{balances: []entity.Balance{
		{Participant: "A", Amount: -30},
		{Participant: "B", Amount: 30},
		{Participant: "C", Amount: 0},
	}}
	repo := &mockLedgerRepository{
		exclusiveFunc: func(ctx context.Context, fn func(tx port.LedgerTx) error) error {
			return fn(ledgerTx)
		},
	}

	result, err := NewSettleLedgerUseCase(repo, logger.NewLogger()).Execute(context.Background(), nil)
	if err != nil {
		t.Fatalf("SettleLedgerUseCase.Execute() error = %v", err)
	}
	if result.RunID == "" {
		t.Error("expected a run ID")
	}
	if result.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", result.Count())
	}
	if ins := result.Instructions[0]; ins != (entity.Instruction{From: "A", To: "B", Amount: 30}) {
		t.Errorf("instruction = %+v, want A pays B 30", ins)
	}
	if len(ledgerTx.written) != 2 || ledgerTx.written["A"] != 0 || ledgerTx.written["B"] != 0 {
		t.Errorf("written = %v, want A:0 B:0 only", ledgerTx.written)
	}
}

func TestSettleLedgerUseCase_Errors(t *testing.T) {
	tests := []struct {
		name    string
		repo    *mockLedgerRepository
		wantErr error
	}{
		{
			name: "unbalanced snapshot",
			repo: &mockLedgerRepository{
				exclusiveFunc: func(ctx context.Context, fn func(tx port.LedgerTx) error) error {
					return fn(&mockLedgerTx{balances: []entity.Balance{{Participant: "A", Amount: 5}}})
				},
			},
			wantErr: entity.ErrUnbalancedLedger,
		},
		{
			name: "cancelled context",
			repo: &mockLedgerRepository{
				exclusiveFunc: func(ctx context.Context, fn func(tx port.LedgerTx) error) error {
					return context.Canceled
				},
			},
			wantErr: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewSettleLedgerUseCase(tt.repo, logger.NewLogger()).Execute(context.Background(), nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SettleLedgerUseCase.Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if result != nil {
				t.Errorf("result = %+v, want nil", result)
			}
		})
	}
}

func TestSettleLedger_EndToEnd(t *testing.T) {
	ctx := context.Background()
	ledger := newLedger(t, 3)
	record := NewRecordTransactionUseCase(ledger)
	balances := NewGetBalancesUseCase(ledger)
	settle := NewSettleLedgerUseCase(ledger, logger.NewLogger())

	if err := record.Execute(ctx, entity.Transaction{Payer: "A", Payee: "B", Amount: 100}); err != nil {
		t.Fatalf("record A->B: %v", err)
	}
	if err := record.Execute(ctx, entity.Transaction{Payer: "C", Payee: "A", Amount: 50}); err != nil {
		t.Fatalf("record C->A: %v", err)
	}

	before, err := balances.Execute(ctx)
	if err != nil {
		t.Fatalf("GetBalancesUseCase.Execute() error = %v", err)
	}
	want := []entity.Balance{
		{Participant: "A", Amount: -50},
		{Participant: "B", Amount: 100},
		{Participant: "C", Amount: -50},
	}
	if len(before) != len(want) {
		t.Fatalf("balances = %v, want %v", before, want)
	}
	for i, b := range before {
		if b != want[i] {
			t.Fatalf("balances = %v, want %v", before, want)
		}
	}

	// Rejected input leaves balances unchanged.
	if err := record.Execute(ctx, entity.Transaction{Payer: "A", Payee: "A", Amount: 10}); !errors.Is(err, entity.ErrInvalidTransaction) {
		t.Fatalf("record A->A error = %v, want %v", err, entity.ErrInvalidTransaction)
	}

	var streamed []entity.Instruction
	result, err := settle.Execute(ctx, func(ins entity.Instruction) {
		streamed = append(streamed, ins)
	})
	if err != nil {
		t.Fatalf("SettleLedgerUseCase.Execute() error = %v", err)
	}
	if result.Count() != 2 || len(streamed) != 2 {
		t.Fatalf("instructions = %v (streamed %v), want 2", result.Instructions, streamed)
	}

	// Replaying the instructions against the pre-settlement balances zeroes everyone.
	net := map[string]int64{}
	for _, b := range before {
		net[b.Participant] = b.Amount
	}
	for _, ins := range result.Instructions {
		if ins.To != "B" {
			t.Errorf("instruction %+v, want payee B", ins)
		}
		net[ins.From] += ins.Amount
		net[ins.To] -= ins.Amount
	}
	for name, amount := range net {
		if amount != 0 {
			t.Errorf("replayed balance of %s = %d, want 0", name, amount)
		}
	}

	after, err := balances.Execute(ctx)
	if err != nil {
		t.Fatalf("GetBalancesUseCase.Execute() error = %v", err)
	}
	for _, b := range after {
		if b.Amount != 0 {
			t.Errorf("balance of %s after settlement = %d, want 0", b.Participant, b.Amount)
		}
	}

	again, err := settle.Execute(ctx, nil)
	if err != nil {
		t.Fatalf("second SettleLedgerUseCase.Execute() error = %v", err)
	}
	if again.Count() != 0 {
		t.Errorf("second settlement emitted %d instructions, want 0", again.Count())
	}
	if again.RunID == result.RunID {
		t.Error("expected a fresh run ID per settlement")
	}
}

// snapshotLedger captures the balances seen at the start and end of every
// exclusive section.
type snapshotLedger struct {
	*repository.InMemoryLedger
	before []entity.Balance
	after  []entity.Balance
}

func (s *snapshotLedger) WithExclusive(ctx context.Context, fn func(tx port.LedgerTx) error) error {
	return s.InMemoryLedger.WithExclusive(ctx, func(tx port.LedgerTx) error {
		s.before = tx.Balances()
		err := fn(tx)
		s.after = tx.Balances()
		return err
	})
}

func TestSettleLedger_ConcurrentWithRecords(t *testing.T) {
	ctx := context.Background()
	names := []string{"A", "B", "C", "D"}
	ledger := newLedger(t, len(names))
	record := NewRecordTransactionUseCase(ledger)

	var mu sync.Mutex
	recorded := make(map[string]int64) // net effect of every accepted transaction
	settled := make(map[string]int64)  // sum of the balances zeroed by each run

	apply := func(net map[string]int64, tx entity.Transaction) {
		net[tx.Payer] -= tx.Amount
		net[tx.Payee] += tx.Amount
	}

	for _, tx := range []entity.Transaction{
		{Payer: "A", Payee: "B", Amount: 1},
		{Payer: "C", Payee: "D", Amount: 1},
	} {
		if err := record.Execute(ctx, tx); err != nil {
			t.Fatalf("seed %+v: %v", tx, err)
		}
		apply(recorded, tx)
	}

	const (
		recorders      = 4
		txPerRecorder  = 50
		settlers       = 3
		runsPerSettler = 10
	)

	var wg sync.WaitGroup
	for g := 0; g < recorders; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			local := make(map[string]int64)
			for i := 0; i < txPerRecorder; i++ {
				tx := entity.Transaction{
					Payer:  names[(g+i)%len(names)],
					Payee:  names[(g+i+1)%len(names)],
					Amount: int64(i + 1),
				}
				if err := record.Execute(ctx, tx); err != nil {
					t.Errorf("record %+v: %v", tx, err)
					continue
				}
				apply(local, tx)
			}
			mu.Lock()
			for name, amount := range local {
				recorded[name] += amount
			}
			mu.Unlock()
		}(g)
	}

	for g := 0; g < settlers; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			view := &snapshotLedger{InMemoryLedger: ledger}
			settle := NewSettleLedgerUseCase(view, logger.NewLogger())

			for r := 0; r < runsPerSettler; r++ {
				var streamed []entity.Instruction
				result, err := settle.Execute(ctx, func(ins entity.Instruction) {
					streamed = append(streamed, ins)
				})
				if err != nil {
					t.Errorf("SettleLedgerUseCase.Execute() error = %v", err)
					return
				}

				if len(streamed) != result.Count() {
					t.Errorf("streamed %d instructions, result has %d", len(streamed), result.Count())
				}
				if total := entity.Total(view.before); total != 0 {
					t.Errorf("snapshot %v sums to %d", view.before, total)
				}

				net := make(map[string]int64, len(view.before))
				for _, b := range view.before {
					net[b.Participant] = b.Amount
				}
				for _, ins := range streamed {
					net[ins.From] += ins.Amount
					net[ins.To] -= ins.Amount
				}
				for name, amount := range net {
					if amount != 0 {
						t.Errorf("run %s: replayed balance of %s = %d, want 0", result.RunID, name, amount)
					}
				}

				// Nothing may be recorded between the snapshot and the write-back.
				for _, b := range view.after {
					if b.Amount != 0 {
						t.Errorf("run %s: balance of %s = %d at end of settlement, want 0", result.RunID, b.Participant, b.Amount)
					}
				}

				mu.Lock()
				for _, b := range view.before {
					settled[b.Participant] += b.Amount
				}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	final, err := ledger.CurrentBalances(ctx)
	if err != nil {
		t.Fatalf("CurrentBalances() error = %v", err)
	}
	if len(final) != len(names) {
		t.Fatalf("balances = %v, want %d participants", final, len(names))
	}
	if total := entity.Total(final); total != 0 {
		t.Errorf("sum of balances = %d, want 0", total)
	}
	for _, b := range final {
		if want := recorded[b.Participant] - settled[b.Participant]; b.Amount != want {
			t.Errorf("balance of %s = %d, want %d (recorded %d, settled %d)",
				b.Participant, b.Amount, want, recorded[b.Participant], settled[b.Participant])
		}
	}
}
