package usecase

import (
	"context"

	"tally.com/internal/domain/entity"
	"tally.com/internal/domain/port"
)

// RecordTransactionUseCase handles transaction recording
type RecordTransactionUseCase struct {
	repository port.LedgerRepository
}

// NewRecordTransactionUseCase creates a new RecordTransactionUseCase
func NewRecordTransactionUseCase(repository port.LedgerRepository) *RecordTransactionUseCase {
	return &RecordTransactionUseCase{
		repository: repository,
	}
}

// Execute validates the transaction and applies it to the ledger
func (uc *RecordTransactionUseCase) Execute(ctx context.Context, tx entity.Transaction) error {
	tx = tx.Normalize()
	if err := tx.Validate(); err != nil {
		return err
	}

	return uc.repository.RecordTransaction(ctx, tx)
}
