// Package client talks to the ledger api over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const accountHeader = "X-Account"

type Ticket struct {
	ID     int    `json:"id"`
	Holder string `json:"holder"`
	Listed bool   `json:"listed"`
	State  string `json:"state"`
}

type Activity struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	TicketID     *int      `json:"ticket_id,omitempty"`
	Actor        string    `json:"actor"`
	Counterparty string    `json:"counterparty,omitempty"`
	Amount       int64     `json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
}

type Payout struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	TicketID  *int      `json:"ticket_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Config struct {
	TotalTickets int    `json:"total_tickets"`
	TicketPrice  int64  `json:"ticket_price"`
	Organizer    string `json:"organizer"`
	CreatedAt    string `json:"created_at,omitempty"`
}

type Resale struct {
	Ticket Ticket `json:"ticket"`
	Seller string `json:"seller"`
	Payout Payout `json:"payout"`
}

type Withdrawal struct {
	Amount int64   `json:"amount"`
	Payout *Payout `json:"payout,omitempty"`
}

// APIError is a non-2xx response. Code is the api's machine-readable code
// when the body carried one.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
}

// Client calls the api as Account. Account may be empty for read-only use.
type Client struct {
	Base    string
	Account string
	HTTP    *http.Client
}

func New(base, account string) *Client {
	return &Client{
		Base:    strings.TrimRight(base, "/"),
		Account: account,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Config(ctx context.Context) (Config, error) {
	var out Config
	err := c.do(ctx, http.MethodGet, "/config", nil, &out)
	return out, err
}

func (c *Client) Treasury(ctx context.Context) (int64, error) {
	var out struct {
		Balance int64 `json:"balance"`
	}
	if err := c.do(ctx, http.MethodGet, "/treasury", nil, &out); err != nil {
		return 0, err
	}
	return out.Balance, nil
}

func (c *Client) Ticket(ctx context.Context, id int) (Ticket, error) {
	var out Ticket
	err := c.do(ctx, http.MethodGet, ticketPath(id, ""), nil, &out)
	return out, err
}

func (c *Client) Listings(ctx context.Context) ([]Ticket, error) {
	var out []Ticket
	err := c.do(ctx, http.MethodGet, "/tickets", nil, &out)
	return out, err
}

func (c *Client) History(ctx context.Context, id int) ([]Activity, error) {
	var out []Activity
	err := c.do(ctx, http.MethodGet, ticketPath(id, "history"), nil, &out)
	return out, err
}

func (c *Client) Purchase(ctx context.Context, id int, amount int64) (Ticket, error) {
	in := struct {
		PaidAmount int64 `json:"paid_amount"`
	}{PaidAmount: amount}
	var out Ticket
	err := c.do(ctx, http.MethodPost, ticketPath(id, "purchase"), in, &out)
	return out, err
}

func (c *Client) List(ctx context.Context, id int) (Ticket, error) {
	var out Ticket
	err := c.do(ctx, http.MethodPost, ticketPath(id, "list"), nil, &out)
	return out, err
}

func (c *Client) Unlist(ctx context.Context, id int) (Ticket, error) {
	var out Ticket
	err := c.do(ctx, http.MethodPost, ticketPath(id, "unlist"), nil, &out)
	return out, err
}

func (c *Client) Resale(ctx context.Context, id int, newHolder string, amount int64) (Resale, error) {
	in := struct {
		NewHolder  string `json:"new_holder"`
		PaidAmount int64  `json:"paid_amount"`
	}{NewHolder: newHolder, PaidAmount: amount}
	var out Resale
	err := c.do(ctx, http.MethodPost, ticketPath(id, "resale"), in, &out)
	return out, err
}

func (c *Client) Withdraw(ctx context.Context) (Withdrawal, error) {
	var out Withdrawal
	err := c.do(ctx, http.MethodPost, "/treasury/withdraw", nil, &out)
	return out, err
}

func (c *Client) Payouts(ctx context.Context, account string) ([]Payout, error) {
	var out []Payout
	err := c.do(ctx, http.MethodGet, "/accounts/"+url.PathEscape(account)+"/payouts", nil, &out)
	return out, err
}

func ticketPath(id int, action string) string {
	p := "/tickets/" + strconv.Itoa(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		body = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Account != "" {
		req.Header.Set(accountHeader, c.Account)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return decodeAPIError(resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{
		Status:    resp.StatusCode,
		Message:   http.StatusText(resp.StatusCode),
		RequestID: resp.Header.Get("X-Request-ID"),
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		return apiErr
	}
	var payload struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Error
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(raw))
	return apiErr
}
