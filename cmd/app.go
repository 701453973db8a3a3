// Package cmd implements the pvl CLI to record ledger events and report
// portfolio valuations.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/jzelinka/holdings"
	"github.com/jzelinka/holdings/figi"
	"github.com/jzelinka/holdings/yahoo"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&buyCmd{}, "transactions")
	c.Register(&sellCmd{}, "transactions")
	c.Register(&investCmd{}, "transactions")
	c.Register(&withdrawCmd{}, "transactions")

	c.Register(&reportCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables.

var ledgerFile = flag.String("ledger-file", "ledger.jsonl", "Path to the ledger file (JSONL format)")
var baseCurrency = flag.String("currency", "EUR", "Base currency for portfolio valuation")
var verbose = flag.Bool("v", false, "Log data-quality warnings and fetches")

// Setup applies the global flags. Call it after flag.Parse.
func Setup() {
	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	holdings.SetLogger(holdings.Logger().Level(level))
}

// newPortfolio returns an empty portfolio wired to Yahoo prices and OpenFIGI
// symbol resolution.
func newPortfolio() *holdings.Portfolio {
	market := holdings.NewMarket(yahoo.NewService())
	return holdings.NewPortfolio("ledger", *baseCurrency, market, figi.NewResolver(), holdings.ClampRescale)
}

// loadPortfolio decodes the ledger file and replays it into a fresh
// portfolio. A missing ledger file yields an empty portfolio.
func loadPortfolio(ctx context.Context) (*holdings.Portfolio, error) {
	p := newPortfolio()
	f, err := os.Open(*ledgerFile)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ledger %q: %w", *ledgerFile, err)
	}
	defer f.Close()

	records, err := holdings.DecodeRecords(f)
	if err != nil {
		return nil, err
	}
	if err := holdings.Replay(ctx, p, records); err != nil {
		return nil, err
	}
	return p, nil
}

// appendRecord appends one event to the ledger file, creating it on first
// use.
func appendRecord(rec holdings.Record) subcommands.ExitStatus {
	f, err := os.OpenFile(*ledgerFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger file %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	if err := holdings.EncodeRecords(f, rec); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing to ledger file %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %s %s in %s\n", rec.Command, rec.Identifier, *ledgerFile)
	return subcommands.ExitSuccess
}
