package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kenny08gt/event-ticket/internal/domain"
)

const (
	codeMethodNotAllowed     = "method_not_allowed"
	codeNotFound             = "not_found"
	codeInvalidRequestBody   = "invalid_request_body"
	codeInvalidTicketID      = "invalid_ticket_id"
	codeInvalidPrice         = "invalid_price"
	codeInvalidAccount       = "invalid_account"
	codeUnauthorized         = "unauthorized"
	codeNotListed            = "not_listed"
	codeZeroAddress          = "zero_address"
	codeOverflow             = "overflow"
	codeTransferFailed       = "transfer_failed"
	codeTicketAlreadySold    = "ticket_already_sold"
	codeLedgerNotInitialized = "ledger_not_initialized"
	codeForbidden            = "forbidden"
	codeInternalError        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeLedgerError maps a marketplace error onto a status and stable code.
// Unknown errors are reported as internal without leaking their text.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTicketID):
		writeError(w, http.StatusNotFound, codeInvalidTicketID, domain.ErrInvalidTicketID.Error())
	case errors.Is(err, domain.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, codeInvalidPrice, domain.ErrInvalidPrice.Error())
	case errors.Is(err, domain.ErrInvalidAccount):
		writeError(w, http.StatusBadRequest, codeInvalidAccount, domain.ErrInvalidAccount.Error())
	case errors.Is(err, domain.ErrZeroAddress):
		writeError(w, http.StatusBadRequest, codeZeroAddress, domain.ErrZeroAddress.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, codeUnauthorized, domain.ErrUnauthorized.Error())
	case errors.Is(err, domain.ErrNotListed):
		writeError(w, http.StatusConflict, codeNotListed, domain.ErrNotListed.Error())
	case errors.Is(err, domain.ErrTicketAlreadySold):
		writeError(w, http.StatusConflict, codeTicketAlreadySold, domain.ErrTicketAlreadySold.Error())
	case errors.Is(err, domain.ErrOverflow):
		writeError(w, http.StatusConflict, codeOverflow, domain.ErrOverflow.Error())
	case errors.Is(err, domain.ErrTransferFailed):
		writeError(w, http.StatusBadGateway, codeTransferFailed, domain.ErrTransferFailed.Error())
	case errors.Is(err, domain.ErrLedgerNotInitialized):
		writeError(w, http.StatusServiceUnavailable, codeLedgerNotInitialized, domain.ErrLedgerNotInitialized.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
}
