package domain

import "time"

type ActivityKind string

const (
	ActivityPurchase ActivityKind = "purchase"
	ActivityList     ActivityKind = "list"
	ActivityUnlist   ActivityKind = "unlist"
	ActivityResale   ActivityKind = "resale"
	ActivityWithdraw ActivityKind = "withdraw"
)

// Activity records one committed ledger mutation. TicketID is nil for
// treasury withdrawals.
type Activity struct {
	ID           string
	Kind         ActivityKind
	TicketID     *int
	Actor        Account
	Counterparty Account
	Amount       int64
	CreatedAt    time.Time
}

// Payout is a value transfer out of the ledger to an external account.
type Payout struct {
	ID        string
	To        Account
	Amount    int64
	Reason    ActivityKind
	TicketID  *int
	CreatedAt time.Time
}
