package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/kenny08gt/event-ticket/internal/app"
	"github.com/kenny08gt/event-ticket/internal/domain"
)

// TicketService is what the ticket endpoints need from the marketplace.
type TicketService interface {
	Ticket(ctx context.Context, id int) (domain.Ticket, error)
	Listings(ctx context.Context) ([]domain.Ticket, error)
	History(ctx context.Context, id int) ([]domain.Activity, error)
	PurchaseTicket(ctx context.Context, in app.PurchaseInput) (domain.Ticket, error)
	ListTicketToResale(ctx context.Context, in app.ListingInput) (domain.Ticket, error)
	UnlistTicketToResale(ctx context.Context, in app.ListingInput) (domain.Ticket, error)
	Resale(ctx context.Context, in app.ResaleInput) (app.ResaleResult, error)
}

// HandleListings serves GET /tickets, the tickets currently offered for resale.
func HandleListings(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		tickets, err := svc.Listings(r.Context())
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		resp := make([]ticketResponse, 0, len(tickets))
		for _, t := range tickets {
			resp = append(resp, newTicketResponse(t))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleTicket serves /tickets/{id} and its actions.
func HandleTicket(svc TicketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, action, err := parseTicketPath(r.URL.Path)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidTicketID) {
				writeLedgerError(w, err)
				return
			}
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		switch action {
		case "":
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			getTicket(w, r, svc, id)
		case "history":
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			getHistory(w, r, svc, id)
		case "purchase", "list", "unlist", "resale":
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			caller, err := callerFrom(r)
			if err != nil {
				writeLedgerError(w, err)
				return
			}
			switch action {
			case "purchase":
				purchaseTicket(w, r, svc, caller, id)
			case "list":
				setListing(w, r, svc.ListTicketToResale, caller, id)
			case "unlist":
				setListing(w, r, svc.UnlistTicketToResale, caller, id)
			case "resale":
				resaleTicket(w, r, svc, caller, id)
			}
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
		}
	}
}

func getTicket(w http.ResponseWriter, r *http.Request, svc TicketService, id int) {
	ticket, err := svc.Ticket(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTicketResponse(ticket))
}

func getHistory(w http.ResponseWriter, r *http.Request, svc TicketService, id int) {
	history, err := svc.History(r.Context(), id)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	resp := make([]activityResponse, 0, len(history))
	for _, a := range history {
		resp = append(resp, newActivityResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

type purchaseRequest struct {
	PaidAmount int64 `json:"paid_amount"`
}

func purchaseTicket(w http.ResponseWriter, r *http.Request, svc TicketService, caller domain.Account, id int) {
	var req purchaseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	ticket, err := svc.PurchaseTicket(r.Context(), app.PurchaseInput{
		Caller:     caller,
		TicketID:   id,
		PaidAmount: req.PaidAmount,
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTicketResponse(ticket))
}

type listingFunc func(ctx context.Context, in app.ListingInput) (domain.Ticket, error)

func setListing(w http.ResponseWriter, r *http.Request, fn listingFunc, caller domain.Account, id int) {
	ticket, err := fn(r.Context(), app.ListingInput{Caller: caller, TicketID: id})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTicketResponse(ticket))
}

type resaleRequest struct {
	NewHolder  string `json:"new_holder"`
	PaidAmount int64  `json:"paid_amount"`
}

type resaleResponse struct {
	Ticket ticketResponse `json:"ticket"`
	Seller string         `json:"seller"`
	Payout payoutResponse `json:"payout"`
}

func resaleTicket(w http.ResponseWriter, r *http.Request, svc TicketService, caller domain.Account, id int) {
	var req resaleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	newHolder := domain.ZeroAccount
	if strings.TrimSpace(req.NewHolder) != "" {
		parsed, err := domain.ParseAccount(req.NewHolder)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		newHolder = parsed
	}

	res, err := svc.Resale(r.Context(), app.ResaleInput{
		Caller:     caller,
		TicketID:   id,
		NewHolder:  newHolder,
		PaidAmount: req.PaidAmount,
	})
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resaleResponse{
		Ticket: newTicketResponse(res.Ticket),
		Seller: res.Seller.String(),
		Payout: newPayoutResponse(res.Payout),
	})
}

var errNoTicketRoute = errors.New("no ticket route")

// parseTicketPath splits /tickets/{id}[/{action}]. A segment in the id
// position that is not an int is ErrInvalidTicketID; any other shape is
// errNoTicketRoute.
func parseTicketPath(path string) (int, string, error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "tickets" || parts[1] == "" {
		return 0, "", errNoTicketRoute
	}
	if len(parts) == 3 && parts[2] == "" {
		return 0, "", errNoTicketRoute
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, "", domain.ErrInvalidTicketID
	}
	if len(parts) == 3 {
		return id, parts[2], nil
	}
	return id, "", nil
}
