package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kenny08gt/event-ticket/internal/domain"
)

// PayoutLedger is the value-transfer primitive backed by the payouts table.
// A transfer is a row written in the caller's transaction, so it commits or
// rolls back with the ledger mutation that triggered it.
type PayoutLedger struct {
	pool *pgxpool.Pool
}

func NewPayoutLedger(pool *pgxpool.Pool) *PayoutLedger {
	return &PayoutLedger{pool: pool}
}

func (p *PayoutLedger) Transfer(ctx context.Context, payout domain.Payout) error {
	if payout.To.IsZero() {
		return domain.ErrZeroAddress
	}
	const stmt = `
INSERT INTO payouts (id, recipient, amount, reason, ticket_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := conn(ctx, p.pool).Exec(ctx, stmt,
		payout.ID,
		payout.To,
		payout.Amount,
		payout.Reason,
		payout.TicketID,
		payout.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record payout: %w", err)
	}
	return nil
}

func (p *PayoutLedger) ListPayouts(ctx context.Context, to domain.Account) ([]domain.Payout, error) {
	const query = `
SELECT id::text, recipient, amount, reason, ticket_id, created_at
FROM payouts
WHERE recipient = $1
ORDER BY seq ASC`

	rows, err := conn(ctx, p.pool).Query(ctx, query, to)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	defer rows.Close()

	var out []domain.Payout
	for rows.Next() {
		var po domain.Payout
		if err := rows.Scan(&po.ID, &po.To, &po.Amount, &po.Reason, &po.TicketID, &po.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payout: %w", err)
		}
		out = append(out, po)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate payouts: %w", rows.Err())
	}
	return out, nil
}

// PaidTo sums the payouts credited to an account.
func (p *PayoutLedger) PaidTo(ctx context.Context, to domain.Account) (int64, error) {
	const query = `SELECT COALESCE(SUM(amount), 0)::bigint FROM payouts WHERE recipient = $1`

	var total int64
	if err := conn(ctx, p.pool).QueryRow(ctx, query, to).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum payouts: %w", err)
	}
	return total, nil
}
