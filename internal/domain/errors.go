package domain

import "errors"

var (
	ErrInvalidTicketID          = errors.New("invalid ticket id")
	ErrInvalidPrice             = errors.New("invalid ticket price")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrNotListed                = errors.New("ticket not listed for resale")
	ErrZeroAddress              = errors.New("new holder cannot be the zero address")
	ErrOverflow                 = errors.New("treasury overflow")
	ErrTransferFailed           = errors.New("transfer failed")
	ErrTicketAlreadySold        = errors.New("ticket already sold")
	ErrInvalidAccount           = errors.New("invalid account")
	ErrInvalidConfig            = errors.New("invalid ledger config")
	ErrConfigMismatch           = errors.New("ledger already initialized with a different config")
	ErrLedgerNotInitialized     = errors.New("ledger not initialized")
	ErrLedgerAlreadyInitialized = errors.New("ledger already initialized")
)
