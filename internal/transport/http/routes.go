package http

import "net/http"

// Marketplace is the full surface the api exposes.
type Marketplace interface {
	TicketService
	TreasuryService
	ConfigProvider
	PayoutReader
}

// NewMux registers every ledger route. Unknown paths get a JSON 404.
func NewMux(svc Marketplace, health HealthCheck) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/health", HandleHealth(health))
	mux.Handle("/config", HandleConfig(svc))
	mux.Handle("/treasury", HandleTreasury(svc))
	mux.Handle("/treasury/withdraw", HandleWithdraw(svc))
	mux.Handle("/tickets", HandleListings(svc))
	mux.Handle("/tickets/", HandleTicket(svc))
	mux.Handle("/accounts/", HandleAccountPayouts(svc))
	mux.HandleFunc("/", noRoute)
	return mux
}

func noRoute(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, codeNotFound, "no route for "+r.URL.Path)
}
