package main

import (
	"os"

	"github.com/kenny08gt/event-ticket/cmd/ticketctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
