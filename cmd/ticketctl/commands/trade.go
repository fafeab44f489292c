package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kenny08gt/event-ticket/internal/client"
)

func purchaseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "purchase <ticket-id> <amount>",
		Short: "Buy an unsold ticket at the configured price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireAccount(); err != nil {
				return err
			}
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			ticket, err := opts.api.Purchase(ctx, id, amount)
			if err != nil {
				return err
			}
			printTicket(cmd.OutOrStdout(), ticket)
			return nil
		},
	}
}

type listingCall func(ctx context.Context, id int) (client.Ticket, error)

func listingCmd(opts *options, use, short string, call func(*client.Client) listingCall) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <ticket-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireAccount(); err != nil {
				return err
			}
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			ticket, err := call(opts.api)(ctx, id)
			if err != nil {
				return err
			}
			printTicket(cmd.OutOrStdout(), ticket)
			return nil
		},
	}
}

func listCmd(opts *options) *cobra.Command {
	return listingCmd(opts, "list", "Offer one of your tickets for resale", func(c *client.Client) listingCall { return c.List })
}

func unlistCmd(opts *options) *cobra.Command {
	return listingCmd(opts, "unlist", "Withdraw one of your tickets from resale", func(c *client.Client) listingCall { return c.Unlist })
}

func resaleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "resale <ticket-id> <new-holder> <amount>",
		Short: "Buy a listed ticket on behalf of a new holder",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireAccount(); err != nil {
				return err
			}
			id, err := parseTicketID(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			out, err := opts.api.Resale(ctx, id, args[1], amount)
			if err != nil {
				return err
			}
			printTicket(cmd.OutOrStdout(), out.Ticket)
			fmt.Fprintf(cmd.OutOrStdout(), "seller=%s\n", checksum(out.Seller))
			printPayout(cmd.OutOrStdout(), out.Payout)
			return nil
		},
	}
}

func withdrawCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw",
		Short: "Send the whole treasury to the organizer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireAccount(); err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd)
			defer cancel()
			out, err := opts.api.Withdraw(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "withdrawn=%d\n", out.Amount)
			return nil
		},
	}
}
