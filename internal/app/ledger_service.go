package app

import (
	"context"
	"errors"

	"github.com/kenny08gt/event-ticket/internal/clock"
	"github.com/kenny08gt/event-ticket/internal/domain"
)

type LedgerInitializer interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetConfig(ctx context.Context) (domain.LedgerConfig, error)
	CreateLedger(ctx context.Context, cfg domain.LedgerConfig) error
}

// InitializeLedger creates the config row, every ticket and an empty
// treasury on first run. Later runs return the stored config, which must
// match cfg.
func InitializeLedger(ctx context.Context, repo LedgerInitializer, clk clock.Clock, cfg domain.LedgerConfig) (domain.LedgerConfig, error) {
	if err := cfg.Validate(); err != nil {
		return domain.LedgerConfig{}, err
	}

	var result domain.LedgerConfig
	err := repo.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := repo.GetConfig(txCtx)
		switch {
		case err == nil:
			result = existing
			return nil
		case !errors.Is(err, domain.ErrLedgerNotInitialized):
			return err
		}

		cfg.CreatedAt = clk.Now()
		if err := repo.CreateLedger(txCtx, cfg); err != nil {
			return err
		}
		result = cfg
		return nil
	})
	if errors.Is(err, domain.ErrLedgerAlreadyInitialized) {
		// Another process won the race; compare against what it stored.
		result, err = repo.GetConfig(ctx)
	}
	if err != nil {
		return domain.LedgerConfig{}, err
	}

	if !result.Same(cfg) {
		return domain.LedgerConfig{}, domain.ErrConfigMismatch
	}
	return result, nil
}
