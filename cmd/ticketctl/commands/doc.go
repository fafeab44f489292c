// Package commands defines the ticketctl CLI, a thin client for the ledger
// api.
//
// Commands
//
//   - config      Print the ledger configuration
//   - treasury    Print the treasury balance
//   - owner       Print a ticket's holder and listing state
//   - listings    List tickets offered for resale
//   - history     Print a ticket's activity
//   - purchase    Buy an unsold ticket at the configured price
//   - list        Offer one of your tickets for resale
//   - unlist      Withdraw one of your tickets from resale
//   - resale      Buy a listed ticket for a new holder
//   - withdraw    Send the treasury to the organizer
//   - payouts     List payouts credited to an account
//
// Mutating commands send --account as the caller.
package commands
