package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/kenny08gt/event-ticket/internal/domain"
)

// AccountHeader carries the caller's account on mutating requests.
const AccountHeader = "X-Account"

func callerFrom(r *http.Request) (domain.Account, error) {
	raw := strings.TrimSpace(r.Header.Get(AccountHeader))
	if raw == "" {
		return "", domain.ErrInvalidAccount
	}
	return domain.ParseAccount(raw)
}

// decodeBody reads a JSON body strictly. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
