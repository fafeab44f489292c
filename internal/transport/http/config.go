package http

import (
	"net/http"
	"time"

	"github.com/kenny08gt/event-ticket/internal/domain"
)

type ConfigProvider interface {
	Config() domain.LedgerConfig
}

type configResponse struct {
	TotalTickets int    `json:"total_tickets"`
	TicketPrice  int64  `json:"ticket_price"`
	Organizer    string `json:"organizer"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// HandleConfig serves GET /config.
func HandleConfig(svc ConfigProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		cfg := svc.Config()
		resp := configResponse{
			TotalTickets: cfg.TotalTickets,
			TicketPrice:  cfg.TicketPrice,
			Organizer:    cfg.Organizer.String(),
		}
		if !cfg.CreatedAt.IsZero() {
			resp.CreatedAt = cfg.CreatedAt.UTC().Format(time.RFC3339Nano)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
