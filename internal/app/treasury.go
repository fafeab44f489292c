package app

import (
	"context"
	"math"

	"github.com/kenny08gt/event-ticket/internal/domain"
)

type TreasuryStore interface {
	GetTreasury(ctx context.Context) (int64, error)
	GetTreasuryForUpdate(ctx context.Context) (int64, error)
	SetTreasury(ctx context.Context, balance int64) error
}

// Treasury holds primary-sale proceeds owed to the organizer. Credit and
// Drain lock the balance and must run inside WithTx.
type Treasury struct {
	store TreasuryStore
}

func NewTreasury(store TreasuryStore) *Treasury {
	return &Treasury{store: store}
}

func (t *Treasury) Balance(ctx context.Context) (int64, error) {
	return t.store.GetTreasury(ctx)
}

// Credit adds amount and returns the new balance.
func (t *Treasury) Credit(ctx context.Context, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidPrice
	}
	balance, err := t.store.GetTreasuryForUpdate(ctx)
	if err != nil {
		return 0, err
	}
	if balance > math.MaxInt64-amount {
		return 0, domain.ErrOverflow
	}
	balance += amount
	if err := t.store.SetTreasury(ctx, balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// Drain hands the full balance to pay and zeroes the treasury only if pay
// succeeds. The balance is untouched on failure.
func (t *Treasury) Drain(ctx context.Context, pay func(ctx context.Context, amount int64) error) (int64, error) {
	balance, err := t.store.GetTreasuryForUpdate(ctx)
	if err != nil {
		return 0, err
	}
	if err := pay(ctx, balance); err != nil {
		return 0, err
	}
	if balance == 0 {
		return 0, nil
	}
	if err := t.store.SetTreasury(ctx, 0); err != nil {
		return 0, err
	}
	return balance, nil
}
