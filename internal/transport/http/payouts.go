package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/kenny08gt/event-ticket/internal/domain"
)

type PayoutReader interface {
	Payouts(ctx context.Context, to domain.Account) ([]domain.Payout, error)
}

// HandleAccountPayouts serves GET /accounts/{addr}/payouts.
func HandleAccountPayouts(svc PayoutReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := parsePayoutsPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		account, err := domain.ParseAccount(raw)
		if err != nil {
			writeLedgerError(w, err)
			return
		}

		payouts, err := svc.Payouts(r.Context(), account)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		resp := make([]payoutResponse, 0, len(payouts))
		for _, p := range payouts {
			resp = append(resp, newPayoutResponse(p))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func parsePayoutsPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 || parts[0] != "accounts" || parts[2] != "payouts" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
