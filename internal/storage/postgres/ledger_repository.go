package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kenny08gt/event-ticket/internal/domain"
)

type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *LedgerRepository) GetConfig(ctx context.Context) (domain.LedgerConfig, error) {
	const query = `SELECT total_tickets, ticket_price, organizer, created_at FROM ledger_config WHERE id = 1`

	var cfg domain.LedgerConfig
	err := conn(ctx, r.pool).QueryRow(ctx, query).
		Scan(&cfg.TotalTickets, &cfg.TicketPrice, &cfg.Organizer, &cfg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LedgerConfig{}, domain.ErrLedgerNotInitialized
		}
		return domain.LedgerConfig{}, fmt.Errorf("get config: %w", err)
	}
	return cfg, nil
}

// CreateLedger inserts the config row, every ticket and the treasury row.
// Call it inside WithTx so a partial ledger is never visible.
func (r *LedgerRepository) CreateLedger(ctx context.Context, cfg domain.LedgerConfig) error {
	q := conn(ctx, r.pool)

	const configStmt = `
INSERT INTO ledger_config (id, total_tickets, ticket_price, organizer, created_at)
VALUES (1, $1, $2, $3, $4)`
	if _, err := q.Exec(ctx, configStmt, cfg.TotalTickets, cfg.TicketPrice, cfg.Organizer, cfg.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrLedgerAlreadyInitialized
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidConfig
		}
		return fmt.Errorf("create config: %w", err)
	}

	const ticketsStmt = `
INSERT INTO tickets (id, holder, listed)
SELECT n, $2, FALSE FROM generate_series(0, $1::int - 1) AS n`
	if _, err := q.Exec(ctx, ticketsStmt, cfg.TotalTickets, domain.ZeroAccount); err != nil {
		return fmt.Errorf("create tickets: %w", err)
	}

	if _, err := q.Exec(ctx, `INSERT INTO treasury (id, balance) VALUES (1, 0)`); err != nil {
		return fmt.Errorf("create treasury: %w", err)
	}
	return nil
}

func (r *LedgerRepository) GetTicket(ctx context.Context, id int) (domain.Ticket, error) {
	return r.getTicket(ctx, `SELECT id, holder, listed FROM tickets WHERE id = $1`, id)
}

func (r *LedgerRepository) GetTicketForUpdate(ctx context.Context, id int) (domain.Ticket, error) {
	return r.getTicket(ctx, `SELECT id, holder, listed FROM tickets WHERE id = $1 FOR UPDATE`, id)
}

func (r *LedgerRepository) getTicket(ctx context.Context, query string, id int) (domain.Ticket, error) {
	var t domain.Ticket
	err := conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(&t.ID, &t.Holder, &t.Listed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Ticket{}, domain.ErrInvalidTicketID
		}
		return domain.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

func (r *LedgerRepository) SetTicketOwner(ctx context.Context, id int, holder domain.Account) error {
	const stmt = `UPDATE tickets SET holder = $2, updated_at = NOW() WHERE id = $1`
	return r.updateTicket(ctx, stmt, id, holder)
}

func (r *LedgerRepository) SetTicketListed(ctx context.Context, id int, listed bool) error {
	const stmt = `UPDATE tickets SET listed = $2, updated_at = NOW() WHERE id = $1`
	return r.updateTicket(ctx, stmt, id, listed)
}

func (r *LedgerRepository) updateTicket(ctx context.Context, stmt string, id int, value any) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, stmt, id, value)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrUnauthorized
		}
		return fmt.Errorf("update ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidTicketID
	}
	return nil
}

func (r *LedgerRepository) ListListedTickets(ctx context.Context) ([]domain.Ticket, error) {
	const query = `SELECT id, holder, listed FROM tickets WHERE listed ORDER BY id ASC`
	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list listed tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.Holder, &t.Listed); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate tickets: %w", rows.Err())
	}
	return tickets, nil
}

func (r *LedgerRepository) GetTreasury(ctx context.Context) (int64, error) {
	return r.getTreasury(ctx, `SELECT balance FROM treasury WHERE id = 1`)
}

func (r *LedgerRepository) GetTreasuryForUpdate(ctx context.Context) (int64, error) {
	return r.getTreasury(ctx, `SELECT balance FROM treasury WHERE id = 1 FOR UPDATE`)
}

func (r *LedgerRepository) getTreasury(ctx context.Context, query string) (int64, error) {
	var balance int64
	if err := conn(ctx, r.pool).QueryRow(ctx, query).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrLedgerNotInitialized
		}
		return 0, fmt.Errorf("get treasury: %w", err)
	}
	return balance, nil
}

func (r *LedgerRepository) SetTreasury(ctx context.Context, balance int64) error {
	const stmt = `UPDATE treasury SET balance = $1, updated_at = NOW() WHERE id = 1`
	tag, err := conn(ctx, r.pool).Exec(ctx, stmt, balance)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrOverflow
		}
		return fmt.Errorf("set treasury: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLedgerNotInitialized
	}
	return nil
}

func (r *LedgerRepository) AppendActivity(ctx context.Context, a domain.Activity) error {
	const stmt = `
INSERT INTO activity (id, kind, ticket_id, actor, counterparty, amount, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := conn(ctx, r.pool).Exec(ctx, stmt,
		a.ID,
		a.Kind,
		a.TicketID,
		a.Actor,
		a.Counterparty,
		a.Amount,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

func (r *LedgerRepository) ListActivity(ctx context.Context, ticketID int) ([]domain.Activity, error) {
	const query = `
SELECT id::text, kind, ticket_id, actor, counterparty, amount, created_at
FROM activity
WHERE ticket_id = $1
ORDER BY seq ASC`

	rows, err := conn(ctx, r.pool).Query(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var out []domain.Activity
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.ID, &a.Kind, &a.TicketID, &a.Actor, &a.Counterparty, &a.Amount, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, a)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate activity: %w", rows.Err())
	}
	return out, nil
}
