package app

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/kenny08gt/event-ticket/internal/clock"
	"github.com/kenny08gt/event-ticket/internal/domain"
	"go.opentelemetry.io/otel/attribute"
)

type LedgerRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	TicketStore
	TreasuryStore
	AppendActivity(ctx context.Context, activity domain.Activity) error
	ListActivity(ctx context.Context, ticketID int) ([]domain.Activity, error)
}

// Payments is the value-transfer primitive. Transfer runs inside the
// caller's transaction; an error aborts the whole operation.
type Payments interface {
	Transfer(ctx context.Context, payout domain.Payout) error
	ListPayouts(ctx context.Context, to domain.Account) ([]domain.Payout, error)
}

type MarketplaceService struct {
	repo     LedgerRepository
	registry *Registry
	treasury *Treasury
	payments Payments
	cfg      domain.LedgerConfig
	clock    clock.Clock
	logger   *log.Logger
}

func NewMarketplaceService(repo LedgerRepository, payments Payments, cfg domain.LedgerConfig, clk clock.Clock, opts ...MarketplaceOption) *MarketplaceService {
	svc := &MarketplaceService{
		repo:     repo,
		registry: NewRegistry(repo, cfg.TotalTickets),
		treasury: NewTreasury(repo),
		payments: payments,
		cfg:      cfg,
		clock:    clk,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type MarketplaceOption func(*MarketplaceService)

// WithLogger overrides the logger used for committed mutations. A nil
// logger silences them.
func WithLogger(logger *log.Logger) MarketplaceOption {
	return func(s *MarketplaceService) {
		if logger == nil {
			logger = log.New(io.Discard, "", 0)
		}
		s.logger = logger
	}
}

type PurchaseInput struct {
	Caller     domain.Account
	TicketID   int
	PaidAmount int64
}

// PurchaseTicket is the primary sale of an unsold ticket at exactly the
// configured price.
func (s *MarketplaceService) PurchaseTicket(ctx context.Context, in PurchaseInput) (ticket domain.Ticket, err error) {
	ctx, span := startSpan(ctx, "Marketplace.PurchaseTicket",
		attribute.Int("ticket.id", in.TicketID),
		attribute.Int64("ticket.paid_amount", in.PaidAmount),
	)
	defer func() { endSpan(span, err) }()

	if err := s.registry.CheckID(in.TicketID); err != nil {
		return domain.Ticket{}, err
	}
	if in.PaidAmount != s.cfg.TicketPrice {
		return domain.Ticket{}, domain.ErrInvalidPrice
	}
	if in.Caller.IsZero() {
		return domain.Ticket{}, domain.ErrInvalidAccount
	}

	now := s.clock.Now()
	var balance int64
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.registry.ticketForUpdate(txCtx, in.TicketID)
		if err != nil {
			return err
		}
		if current.Owned() {
			return domain.ErrTicketAlreadySold
		}

		balance, err = s.treasury.Credit(txCtx, in.PaidAmount)
		if err != nil {
			return err
		}
		if err := s.registry.SetOwner(txCtx, in.TicketID, in.Caller); err != nil {
			return err
		}

		ticket = domain.Ticket{ID: in.TicketID, Holder: in.Caller}
		return s.repo.AppendActivity(txCtx, domain.Activity{
			ID:           newUUID(),
			Kind:         domain.ActivityPurchase,
			TicketID:     ticketRef(in.TicketID),
			Actor:        in.Caller,
			Counterparty: s.cfg.Organizer,
			Amount:       in.PaidAmount,
			CreatedAt:    now,
		})
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	s.logger.Printf("ledger op=purchase ticket=%d caller=%s amount=%d treasury=%d", in.TicketID, in.Caller, in.PaidAmount, balance)
	return ticket, nil
}

type ListingInput struct {
	Caller   domain.Account
	TicketID int
}

// ListTicketToResale marks the caller's ticket as available for resale.
func (s *MarketplaceService) ListTicketToResale(ctx context.Context, in ListingInput) (domain.Ticket, error) {
	return s.setListing(ctx, in, true)
}

// UnlistTicketToResale withdraws the caller's ticket from resale.
func (s *MarketplaceService) UnlistTicketToResale(ctx context.Context, in ListingInput) (domain.Ticket, error) {
	return s.setListing(ctx, in, false)
}

func (s *MarketplaceService) setListing(ctx context.Context, in ListingInput, listed bool) (ticket domain.Ticket, err error) {
	kind := domain.ActivityUnlist
	spanName := "Marketplace.UnlistTicketToResale"
	if listed {
		kind = domain.ActivityList
		spanName = "Marketplace.ListTicketToResale"
	}
	ctx, span := startSpan(ctx, spanName, attribute.Int("ticket.id", in.TicketID))
	defer func() { endSpan(span, err) }()

	if err := s.registry.CheckID(in.TicketID); err != nil {
		return domain.Ticket{}, err
	}

	now := s.clock.Now()
	changed := false
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.registry.ticketForUpdate(txCtx, in.TicketID)
		if err != nil {
			return err
		}
		if !current.Owned() || current.Holder != in.Caller {
			return domain.ErrUnauthorized
		}

		ticket = current
		if current.Listed == listed {
			return nil
		}
		if err := s.registry.SetListed(txCtx, in.TicketID, listed); err != nil {
			return err
		}
		ticket.Listed = listed
		changed = true

		return s.repo.AppendActivity(txCtx, domain.Activity{
			ID:        newUUID(),
			Kind:      kind,
			TicketID:  ticketRef(in.TicketID),
			Actor:     in.Caller,
			CreatedAt: now,
		})
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	if changed {
		s.logger.Printf("ledger op=%s ticket=%d caller=%s", kind, in.TicketID, in.Caller)
	}
	return ticket, nil
}

type ResaleInput struct {
	Caller     domain.Account
	TicketID   int
	NewHolder  domain.Account
	PaidAmount int64
}

type ResaleResult struct {
	Ticket domain.Ticket
	Seller domain.Account
	Payout domain.Payout
}

// Resale moves a listed ticket to NewHolder. The payment goes straight to
// the previous holder; the treasury is not involved.
func (s *MarketplaceService) Resale(ctx context.Context, in ResaleInput) (result ResaleResult, err error) {
	ctx, span := startSpan(ctx, "Marketplace.Resale",
		attribute.Int("ticket.id", in.TicketID),
		attribute.Int64("ticket.paid_amount", in.PaidAmount),
	)
	defer func() { endSpan(span, err) }()

	if err := s.registry.CheckID(in.TicketID); err != nil {
		return ResaleResult{}, err
	}
	if in.NewHolder.IsZero() {
		return ResaleResult{}, domain.ErrZeroAddress
	}
	if in.Caller.IsZero() {
		return ResaleResult{}, domain.ErrInvalidAccount
	}

	now := s.clock.Now()
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		current, err := s.registry.ticketForUpdate(txCtx, in.TicketID)
		if err != nil {
			return err
		}
		if !current.Listed {
			return domain.ErrNotListed
		}
		if in.PaidAmount != s.cfg.TicketPrice {
			return domain.ErrInvalidPrice
		}

		payout := domain.Payout{
			ID:        newUUID(),
			To:        current.Holder,
			Amount:    in.PaidAmount,
			Reason:    domain.ActivityResale,
			TicketID:  ticketRef(in.TicketID),
			CreatedAt: now,
		}
		if err := s.payments.Transfer(txCtx, payout); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrTransferFailed, err)
		}
		if err := s.registry.SetOwner(txCtx, in.TicketID, in.NewHolder); err != nil {
			return err
		}
		if err := s.registry.SetListed(txCtx, in.TicketID, false); err != nil {
			return err
		}

		result = ResaleResult{
			Ticket: domain.Ticket{ID: in.TicketID, Holder: in.NewHolder},
			Seller: current.Holder,
			Payout: payout,
		}
		return s.repo.AppendActivity(txCtx, domain.Activity{
			ID:           newUUID(),
			Kind:         domain.ActivityResale,
			TicketID:     ticketRef(in.TicketID),
			Actor:        in.NewHolder,
			Counterparty: current.Holder,
			Amount:       in.PaidAmount,
			CreatedAt:    now,
		})
	})
	if err != nil {
		return ResaleResult{}, err
	}

	s.logger.Printf("ledger op=resale ticket=%d caller=%s seller=%s new_holder=%s amount=%d",
		in.TicketID, in.Caller, result.Seller, in.NewHolder, in.PaidAmount)
	return result, nil
}

type WithdrawInput struct {
	Caller domain.Account
}

type WithdrawResult struct {
	Amount int64
	Payout *domain.Payout
}

// WithdrawRevenue sends the whole treasury to the organizer. Withdrawing an
// empty treasury succeeds without a transfer.
func (s *MarketplaceService) WithdrawRevenue(ctx context.Context, in WithdrawInput) (result WithdrawResult, err error) {
	ctx, span := startSpan(ctx, "Marketplace.WithdrawRevenue")
	defer func() { endSpan(span, err) }()

	if in.Caller.IsZero() || in.Caller != s.cfg.Organizer {
		return WithdrawResult{}, domain.ErrUnauthorized
	}

	now := s.clock.Now()
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		var payout *domain.Payout
		amount, err := s.treasury.Drain(txCtx, func(ctx context.Context, amount int64) error {
			if amount == 0 {
				return nil
			}
			p := domain.Payout{
				ID:        newUUID(),
				To:        s.cfg.Organizer,
				Amount:    amount,
				Reason:    domain.ActivityWithdraw,
				CreatedAt: now,
			}
			if err := s.payments.Transfer(ctx, p); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrTransferFailed, err)
			}
			payout = &p
			return nil
		})
		if err != nil {
			return err
		}

		result = WithdrawResult{Amount: amount, Payout: payout}
		if amount == 0 {
			return nil
		}
		return s.repo.AppendActivity(txCtx, domain.Activity{
			ID:        newUUID(),
			Kind:      domain.ActivityWithdraw,
			Actor:     in.Caller,
			Amount:    amount,
			CreatedAt: now,
		})
	})
	if err != nil {
		return WithdrawResult{}, err
	}

	s.logger.Printf("ledger op=withdraw caller=%s amount=%d", in.Caller, result.Amount)
	return result, nil
}

func (s *MarketplaceService) Config() domain.LedgerConfig {
	return s.cfg
}

func (s *MarketplaceService) Ticket(ctx context.Context, id int) (domain.Ticket, error) {
	return s.registry.Ticket(ctx, id)
}

func (s *MarketplaceService) OwnerOf(ctx context.Context, id int) (domain.Account, error) {
	return s.registry.OwnerOf(ctx, id)
}

func (s *MarketplaceService) IsListed(ctx context.Context, id int) (bool, error) {
	return s.registry.IsListed(ctx, id)
}

func (s *MarketplaceService) Listings(ctx context.Context) ([]domain.Ticket, error) {
	return s.registry.Listings(ctx)
}

func (s *MarketplaceService) TreasuryBalance(ctx context.Context) (int64, error) {
	return s.treasury.Balance(ctx)
}

func (s *MarketplaceService) History(ctx context.Context, id int) ([]domain.Activity, error) {
	if err := s.registry.CheckID(id); err != nil {
		return nil, err
	}
	return s.repo.ListActivity(ctx, id)
}

func (s *MarketplaceService) Payouts(ctx context.Context, to domain.Account) ([]domain.Payout, error) {
	return s.payments.ListPayouts(ctx, to)
}

func ticketRef(id int) *int {
	return &id
}
