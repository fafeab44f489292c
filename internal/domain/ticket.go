package domain

import "time"

type TicketState string

const (
	TicketStateUnsold        TicketState = "unsold"
	TicketStateOwnedUnlisted TicketState = "owned_unlisted"
	TicketStateOwnedListed   TicketState = "owned_listed"
)

// Ticket is one numbered seat of the event. Holder is ZeroAccount until the
// primary sale.
type Ticket struct {
	ID     int
	Holder Account
	Listed bool
}

func (t Ticket) Owned() bool {
	return !t.Holder.IsZero()
}

func (t Ticket) State() TicketState {
	switch {
	case !t.Owned():
		return TicketStateUnsold
	case t.Listed:
		return TicketStateOwnedListed
	default:
		return TicketStateOwnedUnlisted
	}
}

// LedgerConfig is fixed when the ledger is initialized.
type LedgerConfig struct {
	TotalTickets int
	TicketPrice  int64
	Organizer    Account
	CreatedAt    time.Time
}

func (c LedgerConfig) Validate() error {
	if c.TotalTickets <= 0 || c.TicketPrice <= 0 || c.Organizer.IsZero() {
		return ErrInvalidConfig
	}
	return nil
}

// Same reports whether two configs describe the same ledger, ignoring
// bookkeeping fields.
func (c LedgerConfig) Same(other LedgerConfig) bool {
	return c.TotalTickets == other.TotalTickets &&
		c.TicketPrice == other.TicketPrice &&
		c.Organizer == other.Organizer
}
