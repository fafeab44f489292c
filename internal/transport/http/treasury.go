package http

import (
	"context"
	"net/http"

	"github.com/kenny08gt/event-ticket/internal/app"
)

type TreasuryService interface {
	TreasuryBalance(ctx context.Context) (int64, error)
	WithdrawRevenue(ctx context.Context, in app.WithdrawInput) (app.WithdrawResult, error)
}

type treasuryResponse struct {
	Balance int64 `json:"balance"`
}

type withdrawResponse struct {
	Amount int64           `json:"amount"`
	Payout *payoutResponse `json:"payout,omitempty"`
}

// HandleTreasury serves GET /treasury.
func HandleTreasury(svc TreasuryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		balance, err := svc.TreasuryBalance(r.Context())
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, treasuryResponse{Balance: balance})
	}
}

// HandleWithdraw serves POST /treasury/withdraw for the organizer.
func HandleWithdraw(svc TreasuryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		caller, err := callerFrom(r)
		if err != nil {
			writeLedgerError(w, err)
			return
		}

		res, err := svc.WithdrawRevenue(r.Context(), app.WithdrawInput{Caller: caller})
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		resp := withdrawResponse{Amount: res.Amount}
		if res.Payout != nil {
			p := newPayoutResponse(*res.Payout)
			resp.Payout = &p
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
