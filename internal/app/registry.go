package app

import (
	"context"

	"github.com/kenny08gt/event-ticket/internal/domain"
)

type TicketStore interface {
	GetTicket(ctx context.Context, id int) (domain.Ticket, error)
	GetTicketForUpdate(ctx context.Context, id int) (domain.Ticket, error)
	SetTicketOwner(ctx context.Context, id int, holder domain.Account) error
	SetTicketListed(ctx context.Context, id int, listed bool) error
	ListListedTickets(ctx context.Context) ([]domain.Ticket, error)
}

// Registry owns per-ticket state and the id range check. Mutations do no
// validation beyond the range; callers enforce holder rules.
type Registry struct {
	store        TicketStore
	totalTickets int
}

func NewRegistry(store TicketStore, totalTickets int) *Registry {
	return &Registry{
		store:        store,
		totalTickets: totalTickets,
	}
}

// CheckID fails with ErrInvalidTicketID outside [0, totalTickets).
func (r *Registry) CheckID(id int) error {
	if id < 0 || id >= r.totalTickets {
		return domain.ErrInvalidTicketID
	}
	return nil
}

func (r *Registry) Ticket(ctx context.Context, id int) (domain.Ticket, error) {
	if err := r.CheckID(id); err != nil {
		return domain.Ticket{}, err
	}
	return r.store.GetTicket(ctx, id)
}

func (r *Registry) OwnerOf(ctx context.Context, id int) (domain.Account, error) {
	t, err := r.Ticket(ctx, id)
	if err != nil {
		return "", err
	}
	return t.Holder, nil
}

func (r *Registry) IsListed(ctx context.Context, id int) (bool, error) {
	t, err := r.Ticket(ctx, id)
	if err != nil {
		return false, err
	}
	return t.Listed, nil
}

func (r *Registry) Listings(ctx context.Context) ([]domain.Ticket, error) {
	return r.store.ListListedTickets(ctx)
}

func (r *Registry) SetOwner(ctx context.Context, id int, holder domain.Account) error {
	if err := r.CheckID(id); err != nil {
		return err
	}
	return r.store.SetTicketOwner(ctx, id, holder)
}

func (r *Registry) SetListed(ctx context.Context, id int, listed bool) error {
	if err := r.CheckID(id); err != nil {
		return err
	}
	return r.store.SetTicketListed(ctx, id, listed)
}

// ticketForUpdate locks the ticket row; only valid inside WithTx.
func (r *Registry) ticketForUpdate(ctx context.Context, id int) (domain.Ticket, error) {
	if err := r.CheckID(id); err != nil {
		return domain.Ticket{}, err
	}
	return r.store.GetTicketForUpdate(ctx, id)
}
