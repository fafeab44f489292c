package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kenny08gt/event-ticket/internal/app"
	"github.com/kenny08gt/event-ticket/internal/clock"
	"github.com/kenny08gt/event-ticket/internal/domain"
	"github.com/kenny08gt/event-ticket/internal/testutil"
)

var (
	organizer = domain.MustParseAccount("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	buyer     = domain.MustParseAccount("0x70997970c51812dc3a010c7d01b50e0d17dc79c8")
	buyer2    = domain.MustParseAccount("0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc")
)

func TestLedgerRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewLedgerRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("CreateLedger seeds tickets and treasury once", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		cfg := domain.LedgerConfig{
			TotalTickets: 10,
			TicketPrice:  49,
			Organizer:    organizer,
			CreatedAt:    time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC),
		}
		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			return repo.CreateLedger(txCtx, cfg)
		})
		if err != nil {
			t.Fatalf("create ledger: %v", err)
		}

		got, err := repo.GetConfig(ctx)
		if err != nil {
			t.Fatalf("get config: %v", err)
		}
		if !got.Same(cfg) || !got.CreatedAt.Equal(cfg.CreatedAt) {
			t.Fatalf("unexpected config: %+v", got)
		}

		var count int
		if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE holder = $1 AND NOT listed`, domain.ZeroAccount).Scan(&count); err != nil {
			t.Fatalf("count tickets: %v", err)
		}
		if count != 10 {
			t.Fatalf("expected 10 unsold tickets, got %d", count)
		}

		if err := repo.CreateLedger(ctx, cfg); err != domain.ErrLedgerAlreadyInitialized {
			t.Fatalf("expected ErrLedgerAlreadyInitialized, got %v", err)
		}
	})

	t.Run("GetConfig before init", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		if _, err := repo.GetConfig(ctx); err != domain.ErrLedgerNotInitialized {
			t.Fatalf("expected ErrLedgerNotInitialized, got %v", err)
		}
		if _, err := repo.GetTreasury(ctx); err != domain.ErrLedgerNotInitialized {
			t.Fatalf("expected ErrLedgerNotInitialized, got %v", err)
		}
	})

	t.Run("ticket reads and writes", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		testutil.SeedLedger(t, ctx, pool, 5, 49, organizer)

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			ticket, err := repo.GetTicketForUpdate(txCtx, 2)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if ticket.Holder != domain.ZeroAccount || ticket.Listed {
				t.Fatalf("unexpected ticket: %+v", ticket)
			}
			if err := repo.SetTicketOwner(txCtx, 2, buyer); err != nil {
				t.Fatalf("set owner: %v", err)
			}
			return repo.SetTicketListed(txCtx, 2, true)
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}

		ticket, err := repo.GetTicket(ctx, 2)
		if err != nil {
			t.Fatalf("get ticket: %v", err)
		}
		if ticket.Holder != buyer || !ticket.Listed {
			t.Fatalf("unexpected ticket: %+v", ticket)
		}

		listed, err := repo.ListListedTickets(ctx)
		if err != nil {
			t.Fatalf("list listed: %v", err)
		}
		if len(listed) != 1 || listed[0].ID != 2 {
			t.Fatalf("unexpected listings: %+v", listed)
		}

		if _, err := repo.GetTicket(ctx, 5); err != domain.ErrInvalidTicketID {
			t.Fatalf("expected ErrInvalidTicketID, got %v", err)
		}
		if err := repo.SetTicketListed(ctx, 9, true); err != domain.ErrInvalidTicketID {
			t.Fatalf("expected ErrInvalidTicketID, got %v", err)
		}
	})

	t.Run("listing an unowned ticket violates the schema", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		testutil.SeedLedger(t, ctx, pool, 3, 49, organizer)

		if err := repo.SetTicketListed(ctx, 0, true); err != domain.ErrUnauthorized {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("rolled back tx leaves no trace", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		testutil.SeedLedger(t, ctx, pool, 3, 49, organizer)

		boom := errors.New("boom")
		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			if err := repo.SetTicketOwner(txCtx, 1, buyer); err != nil {
				return err
			}
			if err := repo.SetTreasury(txCtx, 49); err != nil {
				return err
			}
			return boom
		})
		if err != boom {
			t.Fatalf("expected boom, got %v", err)
		}

		ticket, _ := repo.GetTicket(ctx, 1)
		if ticket.Owned() {
			t.Fatalf("expected ticket unowned after rollback, got %+v", ticket)
		}
		balance, _ := repo.GetTreasury(ctx)
		if balance != 0 {
			t.Fatalf("expected treasury 0 after rollback, got %d", balance)
		}
	})

	t.Run("activity is returned oldest first", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		testutil.SeedLedger(t, ctx, pool, 3, 49, organizer)

		now := time.Date(2025, 2, 2, 10, 0, 0, 0, time.UTC)
		id := 1
		for i, kind := range []domain.ActivityKind{domain.ActivityPurchase, domain.ActivityList, domain.ActivityUnlist} {
			err := repo.AppendActivity(ctx, domain.Activity{
				ID:        []string{"11111111-1111-4111-8111-111111111111", "22222222-2222-4222-8222-222222222222", "33333333-3333-4333-8333-333333333333"}[i],
				Kind:      kind,
				TicketID:  &id,
				Actor:     buyer,
				CreatedAt: now,
			})
			if err != nil {
				t.Fatalf("append activity: %v", err)
			}
		}
		if err := repo.AppendActivity(ctx, domain.Activity{
			ID:        "44444444-4444-4444-8444-444444444444",
			Kind:      domain.ActivityWithdraw,
			Actor:     organizer,
			Amount:    49,
			CreatedAt: now,
		}); err != nil {
			t.Fatalf("append withdraw: %v", err)
		}

		history, err := repo.ListActivity(ctx, 1)
		if err != nil {
			t.Fatalf("list activity: %v", err)
		}
		if len(history) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(history))
		}
		if history[0].Kind != domain.ActivityPurchase || history[2].Kind != domain.ActivityUnlist {
			t.Fatalf("unexpected order: %+v", history)
		}
		if history[0].TicketID == nil || *history[0].TicketID != 1 {
			t.Fatalf("expected ticket id 1, got %v", history[0].TicketID)
		}
	})
}

func TestPayoutLedger(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)
	payouts := NewPayoutLedger(pool)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)
	testutil.SeedLedger(t, ctx, pool, 3, 49, organizer)

	now := time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)
	if err := payouts.Transfer(ctx, domain.Payout{
		ID:        "55555555-5555-4555-8555-555555555555",
		To:        buyer,
		Amount:    49,
		Reason:    domain.ActivityResale,
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := payouts.Transfer(ctx, domain.Payout{To: domain.ZeroAccount, Amount: 1}); err != domain.ErrZeroAddress {
		t.Fatalf("expected ErrZeroAddress, got %v", err)
	}

	list, err := payouts.ListPayouts(ctx, buyer)
	if err != nil {
		t.Fatalf("list payouts: %v", err)
	}
	if len(list) != 1 || list[0].Amount != 49 || list[0].TicketID != nil {
		t.Fatalf("unexpected payouts: %+v", list)
	}

	total, err := payouts.PaidTo(ctx, buyer)
	if err != nil {
		t.Fatalf("paid to: %v", err)
	}
	if total != 49 {
		t.Fatalf("expected 49, got %d", total)
	}
}

func TestMarketplace_PostgresIntegration(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)

	repo := NewLedgerRepository(pool)
	payouts := NewPayoutLedger(pool)
	now := time.Date(2025, 2, 4, 10, 0, 0, 0, time.UTC)
	cfg, err := app.InitializeLedger(ctx, repo, clock.NewFixed(now), domain.LedgerConfig{
		TotalTickets: 100,
		TicketPrice:  49,
		Organizer:    organizer,
	})
	if err != nil {
		t.Fatalf("initialize ledger: %v", err)
	}
	svc := app.NewMarketplaceService(repo, payouts, cfg, clock.NewFixed(now), app.WithLogger(nil))

	if _, err := svc.PurchaseTicket(ctx, app.PurchaseInput{Caller: buyer, TicketID: 0, PaidAmount: 49}); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if _, err := svc.ListTicketToResale(ctx, app.ListingInput{Caller: buyer, TicketID: 0}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := svc.Resale(ctx, app.ResaleInput{Caller: buyer2, TicketID: 0, NewHolder: buyer2, PaidAmount: 49}); err != nil {
		t.Fatalf("resale: %v", err)
	}

	owner, err := svc.OwnerOf(ctx, 0)
	if err != nil || owner != buyer2 {
		t.Fatalf("expected owner %s, got %s (%v)", buyer2, owner, err)
	}
	balance, _ := svc.TreasuryBalance(ctx)
	if balance != 49 {
		t.Fatalf("expected treasury 49, got %d", balance)
	}
	if paid, _ := payouts.PaidTo(ctx, buyer); paid != 49 {
		t.Fatalf("expected seller paid 49, got %d", paid)
	}

	out, err := svc.WithdrawRevenue(ctx, app.WithdrawInput{Caller: organizer})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if out.Amount != 49 {
		t.Fatalf("expected 49 withdrawn, got %d", out.Amount)
	}
	balance, _ = svc.TreasuryBalance(ctx)
	if balance != 0 {
		t.Fatalf("expected treasury 0, got %d", balance)
	}
	if paid, _ := payouts.PaidTo(ctx, organizer); paid != 49 {
		t.Fatalf("expected organizer paid 49, got %d", paid)
	}

	history, err := svc.History(ctx, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 activity entries, got %d", len(history))
	}
}

func TestMarketplace_PostgresConcurrentPurchase(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)

	repo := NewLedgerRepository(pool)
	now := time.Date(2025, 2, 5, 10, 0, 0, 0, time.UTC)
	cfg, err := app.InitializeLedger(ctx, repo, clock.NewFixed(now), domain.LedgerConfig{
		TotalTickets: 10,
		TicketPrice:  49,
		Organizer:    organizer,
	})
	if err != nil {
		t.Fatalf("initialize ledger: %v", err)
	}
	svc := app.NewMarketplaceService(repo, NewPayoutLedger(pool), cfg, clock.NewFixed(now), app.WithLogger(nil))

	const attempts = 4
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PurchaseTicket(ctx, app.PurchaseInput{Caller: buyer, TicketID: 3, PaidAmount: 49})
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
	balance, _ := svc.TreasuryBalance(ctx)
	if balance != 49 {
		t.Fatalf("expected treasury 49, got %d", balance)
	}
}
