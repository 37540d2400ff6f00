package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tally.com/internal/domain/entity"
	"tally.com/internal/domain/port"
	"tally.com/internal/domain/settlement"
	"tally.com/internal/infrastructure/logger"
)

// SettleLedgerUseCase runs the settlement engine against the ledger
type SettleLedgerUseCase struct {
	repository port.LedgerRepository
	logger     logger.Logger
}

// NewSettleLedgerUseCase creates a new SettleLedgerUseCase
func NewSettleLedgerUseCase(repository port.LedgerRepository, logger logger.Logger) *SettleLedgerUseCase {
	return &SettleLedgerUseCase{
		repository: repository,
		logger:     logger,
	}
}

// Execute settles every non-zero balance. The ledger is held exclusively
// from snapshot to write-back, and emit is called for each instruction as
// it is produced. On error the ledger is left unchanged.
func (uc *SettleLedgerUseCase) Execute(ctx context.Context, emit func(entity.Instruction)) (*entity.SettlementResult, error) {
	result := &entity.SettlementResult{RunID: uuid.New().String()}
	runLogger := uc.logger.WithRunID(result.RunID)

	err := uc.repository.WithExclusive(ctx, func(tx port.LedgerTx) error {
		snapshot := tx.Balances()
		runLogger.LogDebug(ctx, "Settlement started", "participants", len(snapshot))

		plan, err := settlement.Settle(snapshot, emit)
		if err != nil {
			return err
		}

		for _, b := range plan.Final {
			if b.Amount != 0 {
				return fmt.Errorf("%w: %s ends with %d", entity.ErrUnbalancedLedger, b.Participant, b.Amount)
			}
		}
		for _, b := range plan.Final {
			tx.SetBalance(b.Participant, b.Amount)
		}

		result.Instructions = plan.Instructions
		return nil
	})
	if err != nil {
		runLogger.LogError(ctx, "Settlement failed", err)
		return nil, err
	}

	runLogger.LogInfo(ctx, "Settlement completed", "transactions", result.Count())
	return result, nil
}
