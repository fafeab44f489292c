package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kenny08gt/event-ticket/internal/app"
	"github.com/kenny08gt/event-ticket/internal/clock"
	"github.com/kenny08gt/event-ticket/internal/domain"
)

var holder = domain.MustParseAccount("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")

func newSeededStore(t *testing.T, total int) *Store {
	t.Helper()
	s := NewStore()
	err := s.CreateLedger(context.Background(), domain.LedgerConfig{
		TotalTickets: total,
		TicketPrice:  49,
		Organizer:    domain.MustParseAccount("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"),
	})
	if err != nil {
		t.Fatalf("create ledger: %v", err)
	}
	return s
}

func TestStore_NotInitialized(t *testing.T) {
	t.Parallel()
	s := NewStore()
	ctx := context.Background()

	if _, err := s.GetConfig(ctx); err != domain.ErrLedgerNotInitialized {
		t.Fatalf("expected ErrLedgerNotInitialized, got %v", err)
	}
	if _, err := s.GetTicket(ctx, 0); err != domain.ErrLedgerNotInitialized {
		t.Fatalf("expected ErrLedgerNotInitialized, got %v", err)
	}
	if err := s.SetTreasury(ctx, 1); err != domain.ErrLedgerNotInitialized {
		t.Fatalf("expected ErrLedgerNotInitialized, got %v", err)
	}
}

func TestStore_CreateLedgerOnce(t *testing.T) {
	t.Parallel()
	s := newSeededStore(t, 3)

	err := s.CreateLedger(context.Background(), domain.LedgerConfig{TotalTickets: 5})
	if err != domain.ErrLedgerAlreadyInitialized {
		t.Fatalf("expected ErrLedgerAlreadyInitialized, got %v", err)
	}
	cfg, _ := s.GetConfig(context.Background())
	if cfg.TotalTickets != 3 {
		t.Fatalf("expected original config kept, got %+v", cfg)
	}
}

func TestStore_TicketBounds(t *testing.T) {
	t.Parallel()
	s := newSeededStore(t, 3)
	ctx := context.Background()

	for _, id := range []int{-1, 3, 100} {
		if _, err := s.GetTicket(ctx, id); err != domain.ErrInvalidTicketID {
			t.Fatalf("id %d: expected ErrInvalidTicketID, got %v", id, err)
		}
	}
	ticket, err := s.GetTicket(ctx, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ticket.Owned() {
		t.Fatalf("expected unsold ticket, got %+v", ticket)
	}
}

func TestStore_WithTxRollsBack(t *testing.T) {
	t.Parallel()
	s := newSeededStore(t, 3)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.SetTicketOwner(txCtx, 1, holder); err != nil {
			return err
		}
		if err := s.SetTicketListed(txCtx, 1, true); err != nil {
			return err
		}
		if err := s.SetTreasury(txCtx, 49); err != nil {
			return err
		}
		if err := s.AppendActivity(txCtx, domain.Activity{Kind: domain.ActivityPurchase}); err != nil {
			return err
		}
		if err := s.Transfer(txCtx, domain.Payout{To: holder, Amount: 49}); err != nil {
			return err
		}
		return boom
	})
	if err != boom {
		t.Fatalf("expected boom, got %v", err)
	}

	ticket, _ := s.GetTicket(ctx, 1)
	if ticket.Owned() || ticket.Listed {
		t.Fatalf("expected ticket restored, got %+v", ticket)
	}
	if balance, _ := s.GetTreasury(ctx); balance != 0 {
		t.Fatalf("expected treasury 0, got %d", balance)
	}
	if paid, _ := s.PaidTo(ctx, holder); paid != 0 {
		t.Fatalf("expected no payouts, got %d", paid)
	}
	if len(s.activity) != 0 {
		t.Fatalf("expected no activity, got %d", len(s.activity))
	}
}

func TestStore_WithTxCommits(t *testing.T) {
	t.Parallel()
	s := newSeededStore(t, 3)
	ctx := context.Background()

	err := s.WithTx(ctx, func(txCtx context.Context) error {
		// Nested calls join the outer transaction instead of deadlocking.
		return s.WithTx(txCtx, func(inner context.Context) error {
			return s.SetTicketOwner(inner, 0, holder)
		})
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if owner, _ := s.GetTicket(ctx, 0); owner.Holder != holder {
		t.Fatalf("expected holder %s, got %s", holder, owner.Holder)
	}
}

func TestStore_FailTransfers(t *testing.T) {
	t.Parallel()
	s := newSeededStore(t, 1)
	ctx := context.Background()
	boom := errors.New("bank offline")

	s.FailTransfers(boom)
	if err := s.Transfer(ctx, domain.Payout{To: holder, Amount: 1}); err != boom {
		t.Fatalf("expected boom, got %v", err)
	}
	s.FailTransfers(nil)
	if err := s.Transfer(ctx, domain.Payout{To: holder, Amount: 1}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestStore_PayoutsAndActivity(t *testing.T) {
	t.Parallel()
	s := newSeededStore(t, 2)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	one, zero := 1, 0

	_ = s.Transfer(ctx, domain.Payout{ID: "b", To: holder, Amount: 2, CreatedAt: base.Add(time.Minute)})
	_ = s.Transfer(ctx, domain.Payout{ID: "a", To: holder, Amount: 3, CreatedAt: base})
	_ = s.Transfer(ctx, domain.Payout{ID: "c", To: domain.MustParseAccount("0x90f79bf6eb2c4f870365e785982e1f101e93b906"), Amount: 7, CreatedAt: base})
	if err := s.Transfer(ctx, domain.Payout{ID: "d", To: domain.ZeroAccount, Amount: 7}); err != domain.ErrZeroAddress {
		t.Fatalf("expected ErrZeroAddress, got %v", err)
	}

	payouts, _ := s.ListPayouts(ctx, holder)
	if len(payouts) != 2 || payouts[0].ID != "a" || payouts[1].ID != "b" {
		t.Fatalf("unexpected payouts: %+v", payouts)
	}
	if paid, _ := s.PaidTo(ctx, holder); paid != 5 {
		t.Fatalf("expected 5, got %d", paid)
	}

	_ = s.AppendActivity(ctx, domain.Activity{ID: "1", TicketID: &one})
	_ = s.AppendActivity(ctx, domain.Activity{ID: "2"})
	_ = s.AppendActivity(ctx, domain.Activity{ID: "3", TicketID: &zero})
	_ = s.AppendActivity(ctx, domain.Activity{ID: "4", TicketID: &one})

	history, _ := s.ListActivity(ctx, 1)
	if len(history) != 2 || history[0].ID != "1" || history[1].ID != "4" {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestStore_ListListedTickets(t *testing.T) {
	t.Parallel()
	s := newSeededStore(t, 4)
	ctx := context.Background()

	_ = s.SetTicketOwner(ctx, 3, holder)
	_ = s.SetTicketListed(ctx, 3, true)
	_ = s.SetTicketOwner(ctx, 1, holder)
	_ = s.SetTicketListed(ctx, 1, true)

	listed, _ := s.ListListedTickets(ctx)
	if len(listed) != 2 || listed[0].ID != 1 || listed[1].ID != 3 {
		t.Fatalf("unexpected listings: %+v", listed)
	}
}

func TestStore_ConcurrentPurchaseSerialized(t *testing.T) {
	t.Parallel()
	s := newSeededStore(t, 3)
	ctx := context.Background()
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	svc := app.NewMarketplaceService(s, s, cfg, clock.NewFixed(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)), app.WithLogger(nil))

	const attempts = 16
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		buyer := domain.MustParseAccount(fmt.Sprintf("0x%040x", i+1))
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PurchaseTicket(ctx, app.PurchaseInput{Caller: buyer, TicketID: 0, PaidAmount: 49})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		switch err {
		case nil:
			succeeded++
		case domain.ErrTicketAlreadySold:
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one purchase, got %d", succeeded)
	}
	if balance, _ := s.GetTreasury(ctx); balance != 49 {
		t.Fatalf("expected treasury 49, got %d", balance)
	}
	history, _ := s.ListActivity(ctx, 0)
	if len(history) != 1 {
		t.Fatalf("expected one purchase record, got %d", len(history))
	}
}
