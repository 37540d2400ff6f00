package usecase

import (
	"context"

	"tally.com/internal/domain/entity"
	"tally.com/internal/domain/port"
)

// GetBalancesUseCase handles balance retrieval
type GetBalancesUseCase struct {
	repository port.LedgerRepository
}

// NewGetBalancesUseCase creates a new GetBalancesUseCase
func NewGetBalancesUseCase(repository port.LedgerRepository) *GetBalancesUseCase {
	return &GetBalancesUseCase{
		repository: repository,
	}
}

// Execute returns the balance of every known participant, ordered by name
func (uc *GetBalancesUseCase) Execute(ctx context.Context) ([]entity.Balance, error) {
	return uc.repository.CurrentBalances(ctx)
}
