package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LedgerFile is the optional deployment file for the ledger parameters.
// Fields left out keep their environment values.
type LedgerFile struct {
	TotalTickets *int    `yaml:"total_tickets"`
	TicketPrice  *int64  `yaml:"ticket_price"`
	Organizer    *string `yaml:"organizer"`
}

func LoadLedgerFile(path string) (LedgerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LedgerFile{}, fmt.Errorf("read ledger file: %w", err)
	}
	var file LedgerFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return LedgerFile{}, fmt.Errorf("parse ledger file %s: %w", path, err)
	}
	return file, nil
}

func (f LedgerFile) apply(cfg *Config) {
	if f.TotalTickets != nil {
		cfg.TotalTickets = *f.TotalTickets
	}
	if f.TicketPrice != nil {
		cfg.TicketPrice = *f.TicketPrice
	}
	if f.Organizer != nil {
		cfg.Organizer = *f.Organizer
	}
}
