package entity

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransaction    = errors.New("invalid transaction")
	ErrGroupCapacityExceeded = errors.New("group capacity exceeded")
	ErrInvalidGroupSize      = errors.New("invalid group size")
	ErrInvalidNumericInput   = errors.New("invalid numeric input")
	ErrUnbalancedLedger      = errors.New("ledger balances do not sum to zero")
)

var (
	ErrSelfTransaction    = fmt.Errorf("%w: payer and payee are the same", ErrInvalidTransaction)
	ErrNonPositiveAmount  = fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	ErrMissingParticipant = fmt.Errorf("%w: missing participant name", ErrInvalidTransaction)
	ErrAmountOverflow     = fmt.Errorf("%w: amount overflows balance", ErrInvalidTransaction)

	ErrGroupTooSmall = fmt.Errorf("%w: number of people must be at least %d", ErrInvalidGroupSize, MinGroupSize)
	ErrGroupTooLarge = fmt.Errorf("%w: number of people exceeds the maximum limit of %d", ErrInvalidGroupSize, MaxGroupSize)
)
