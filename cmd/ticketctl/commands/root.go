package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kenny08gt/event-ticket/internal/client"
)

const requestTimeout = 15 * time.Second

type options struct {
	server  string
	account string
	api     *client.Client
}

func Execute() error {
	return NewRoot().Execute()
}

// NewRoot builds the command tree. Flags default to TICKETCTL_SERVER and
// TICKETCTL_ACCOUNT.
func NewRoot() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "ticketctl",
		Short:        "Event ticket ledger client",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.server == "" {
				return fmt.Errorf("no server configured. use --server or TICKETCTL_SERVER")
			}
			opts.api = client.New(opts.server, opts.account)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.server, "server", envOr("TICKETCTL_SERVER", "http://localhost:8080"), "api base URL")
	root.PersistentFlags().StringVar(&opts.account, "account", os.Getenv("TICKETCTL_ACCOUNT"), "caller account (0x + 40 hex digits)")

	root.AddCommand(
		configCmd(opts),
		treasuryCmd(opts),
		ownerCmd(opts),
		listingsCmd(opts),
		historyCmd(opts),
		purchaseCmd(opts),
		listCmd(opts),
		unlistCmd(opts),
		resaleCmd(opts),
		withdrawCmd(opts),
		payoutsCmd(opts),
	)
	return root
}

func (o *options) requireAccount() error {
	if o.account == "" {
		return fmt.Errorf("account required (--account or TICKETCTL_ACCOUNT)")
	}
	return nil
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, requestTimeout)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseTicketID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("ticket id %q is not a number", raw)
	}
	return id, nil
}

func parseAmount(raw string) (int64, error) {
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q is not a number", raw)
	}
	return amount, nil
}
