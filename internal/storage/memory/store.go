// Package memory is a process-local ledger store. A single mutex serializes
// every transaction, and a failed transaction restores the state it saw on
// entry.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/kenny08gt/event-ticket/internal/domain"
)

type txKey struct{}

type Store struct {
	mu          sync.Mutex
	cfg         *domain.LedgerConfig
	tickets     []domain.Ticket
	treasury    int64
	activity    []domain.Activity
	payouts     []domain.Payout
	transferErr error
}

func NewStore() *Store {
	return &Store{}
}

type snapshot struct {
	cfg         *domain.LedgerConfig
	tickets     []domain.Ticket
	treasury    int64
	activityLen int
	payoutsLen  int
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		cfg:         s.cfg,
		tickets:     append([]domain.Ticket(nil), s.tickets...),
		treasury:    s.treasury,
		activityLen: len(s.activity),
		payoutsLen:  len(s.payouts),
	}

	txCtx := context.WithValue(ctx, txKey{}, s)
	if err := fn(txCtx); err != nil {
		s.cfg = snap.cfg
		s.tickets = snap.tickets
		s.treasury = snap.treasury
		s.activity = s.activity[:snap.activityLen]
		s.payouts = s.payouts[:snap.payoutsLen]
		return err
	}
	return nil
}

// FailTransfers makes every later Transfer return err. Pass nil to restore.
func (s *Store) FailTransfers(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transferErr = err
}

func (s *Store) GetConfig(ctx context.Context) (domain.LedgerConfig, error) {
	defer s.lock(ctx)()
	if s.cfg == nil {
		return domain.LedgerConfig{}, domain.ErrLedgerNotInitialized
	}
	return *s.cfg, nil
}

func (s *Store) CreateLedger(ctx context.Context, cfg domain.LedgerConfig) error {
	defer s.lock(ctx)()
	if s.cfg != nil {
		return domain.ErrLedgerAlreadyInitialized
	}
	tickets := make([]domain.Ticket, cfg.TotalTickets)
	for i := range tickets {
		tickets[i] = domain.Ticket{ID: i, Holder: domain.ZeroAccount}
	}
	s.cfg = &cfg
	s.tickets = tickets
	s.treasury = 0
	return nil
}

func (s *Store) GetTicket(ctx context.Context, id int) (domain.Ticket, error) {
	defer s.lock(ctx)()
	return s.ticket(id)
}

// GetTicketForUpdate is GetTicket; the transaction already holds the mutex.
func (s *Store) GetTicketForUpdate(ctx context.Context, id int) (domain.Ticket, error) {
	return s.GetTicket(ctx, id)
}

func (s *Store) SetTicketOwner(ctx context.Context, id int, holder domain.Account) error {
	defer s.lock(ctx)()
	if _, err := s.ticket(id); err != nil {
		return err
	}
	s.tickets[id].Holder = holder
	return nil
}

func (s *Store) SetTicketListed(ctx context.Context, id int, listed bool) error {
	defer s.lock(ctx)()
	if _, err := s.ticket(id); err != nil {
		return err
	}
	s.tickets[id].Listed = listed
	return nil
}

func (s *Store) ListListedTickets(ctx context.Context) ([]domain.Ticket, error) {
	defer s.lock(ctx)()
	var out []domain.Ticket
	for _, t := range s.tickets {
		if t.Listed {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) GetTreasury(ctx context.Context) (int64, error) {
	defer s.lock(ctx)()
	if s.cfg == nil {
		return 0, domain.ErrLedgerNotInitialized
	}
	return s.treasury, nil
}

func (s *Store) GetTreasuryForUpdate(ctx context.Context) (int64, error) {
	return s.GetTreasury(ctx)
}

func (s *Store) SetTreasury(ctx context.Context, balance int64) error {
	defer s.lock(ctx)()
	if s.cfg == nil {
		return domain.ErrLedgerNotInitialized
	}
	s.treasury = balance
	return nil
}

func (s *Store) AppendActivity(ctx context.Context, activity domain.Activity) error {
	defer s.lock(ctx)()
	s.activity = append(s.activity, activity)
	return nil
}

func (s *Store) ListActivity(ctx context.Context, ticketID int) ([]domain.Activity, error) {
	defer s.lock(ctx)()
	var out []domain.Activity
	for _, a := range s.activity {
		if a.TicketID != nil && *a.TicketID == ticketID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Transfer records the payout in the same state the ledger transaction
// rolls back, so a failed operation leaves no payout behind.
func (s *Store) Transfer(ctx context.Context, payout domain.Payout) error {
	if payout.To.IsZero() {
		return domain.ErrZeroAddress
	}
	defer s.lock(ctx)()
	if s.transferErr != nil {
		return s.transferErr
	}
	s.payouts = append(s.payouts, payout)
	return nil
}

func (s *Store) ListPayouts(ctx context.Context, to domain.Account) ([]domain.Payout, error) {
	defer s.lock(ctx)()
	var out []domain.Payout
	for _, p := range s.payouts {
		if p.To == to {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// PaidTo sums every payout credited to an account.
func (s *Store) PaidTo(ctx context.Context, to domain.Account) (int64, error) {
	payouts, err := s.ListPayouts(ctx, to)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, p := range payouts {
		total += p.Amount
	}
	return total, nil
}

func (s *Store) ticket(id int) (domain.Ticket, error) {
	if s.cfg == nil {
		return domain.Ticket{}, domain.ErrLedgerNotInitialized
	}
	if id < 0 || id >= len(s.tickets) {
		return domain.Ticket{}, domain.ErrInvalidTicketID
	}
	return s.tickets[id], nil
}

// lock takes the mutex unless ctx belongs to a transaction that already
// holds it.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) inTx(ctx context.Context) bool {
	tx, _ := ctx.Value(txKey{}).(*Store)
	return tx == s
}
