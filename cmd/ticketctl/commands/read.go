package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kenny08gt/event-ticket/internal/client"
	"github.com/kenny08gt/event-ticket/internal/domain"
)

func configCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the ledger configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			cfg, err := opts.api.Config(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total_tickets=%d ticket_price=%d organizer=%s\n",
				cfg.TotalTickets, cfg.TicketPrice, checksum(cfg.Organizer))
			return nil
		},
	}
}

func treasuryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "treasury",
		Short: "Print the treasury balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			balance, err := opts.api.Treasury(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "balance=%d\n", balance)
			return nil
		},
	}
}

func ownerCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "owner <ticket-id>",
		Short: "Print a ticket's holder and listing state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			ticket, err := opts.api.Ticket(ctx, id)
			if err != nil {
				return err
			}
			printTicket(cmd.OutOrStdout(), ticket)
			return nil
		},
	}
}

func listingsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "listings",
		Short: "List tickets offered for resale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			tickets, err := opts.api.Listings(ctx)
			if err != nil {
				return err
			}
			if len(tickets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no listings")
				return nil
			}
			for _, t := range tickets {
				printTicket(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}

func historyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history <ticket-id>",
		Short: "Print a ticket's activity, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			history, err := opts.api.History(ctx, id)
			if err != nil {
				return err
			}
			for _, a := range history {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s actor=%s amount=%d\n",
					a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"), a.Kind, checksum(a.Actor), a.Amount)
			}
			return nil
		},
	}
}

func payoutsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "payouts <account>",
		Short: "List payouts credited to an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			payouts, err := opts.api.Payouts(ctx, args[0])
			if err != nil {
				return err
			}
			var total int64
			for _, p := range payouts {
				printPayout(cmd.OutOrStdout(), p)
				total += p.Amount
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total=%d\n", total)
			return nil
		},
	}
}

func printTicket(w io.Writer, t client.Ticket) {
	fmt.Fprintf(w, "ticket=%d holder=%s listed=%t state=%s\n", t.ID, checksum(t.Holder), t.Listed, t.State)
}

func printPayout(w io.Writer, p client.Payout) {
	fmt.Fprintf(w, "payout to=%s amount=%d reason=%s\n", checksum(p.To), p.Amount, p.Reason)
}

// checksum prints addresses the way wallets show them; anything that does
// not parse is printed as received.
func checksum(s string) string {
	a, err := domain.ParseAccount(s)
	if err != nil {
		return s
	}
	return a.Checksum()
}
