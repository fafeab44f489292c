package http

import (
	"time"

	"github.com/kenny08gt/event-ticket/internal/domain"
)

type ticketResponse struct {
	ID     int    `json:"id"`
	Holder string `json:"holder"`
	Listed bool   `json:"listed"`
	State  string `json:"state"`
}

func newTicketResponse(t domain.Ticket) ticketResponse {
	return ticketResponse{
		ID:     t.ID,
		Holder: t.Holder.String(),
		Listed: t.Listed,
		State:  string(t.State()),
	}
}

type activityResponse struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	TicketID     *int      `json:"ticket_id,omitempty"`
	Actor        string    `json:"actor"`
	Counterparty string    `json:"counterparty,omitempty"`
	Amount       int64     `json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
}

func newActivityResponse(a domain.Activity) activityResponse {
	return activityResponse{
		ID:           a.ID,
		Kind:         string(a.Kind),
		TicketID:     a.TicketID,
		Actor:        a.Actor.String(),
		Counterparty: a.Counterparty.String(),
		Amount:       a.Amount,
		CreatedAt:    a.CreatedAt,
	}
}

type payoutResponse struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	TicketID  *int      `json:"ticket_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newPayoutResponse(p domain.Payout) payoutResponse {
	return payoutResponse{
		ID:        p.ID,
		To:        p.To.String(),
		Amount:    p.Amount,
		Reason:    string(p.Reason),
		TicketID:  p.TicketID,
		CreatedAt: p.CreatedAt,
	}
}
