package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/jzelinka/holdings"
	"github.com/jzelinka/holdings/date"
)

type investCmd struct {
	date     string
	security string
	venue    string
	amount   string
}

func (*investCmd) Name() string     { return "invest" }
func (*investCmd) Synopsis() string { return "record a purchase for a monetary amount" }
func (*investCmd) Usage() string {
	return `pvl invest -s <security> -a <amount> [-d <date>] [-venue <venue>]

  Records a value-based purchase: the quantity, possibly fractional, is
  derived from the closing price on the date.
`
}

func (c *investCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Execution date (YYYY-MM-DD).")
	f.StringVar(&c.security, "s", "", "Security ticker or ISIN.")
	f.StringVar(&c.venue, "venue", "", "Listing venue (MIC), used to resolve ISINs.")
	f.StringVar(&c.amount, "a", "", "Amount invested, in the asset's currency.")
}

func (c *investCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rec, err := valueRecord(holdings.CmdInvest, c.date, c.security, c.venue, c.amount)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return appendRecord(rec)
}

type withdrawCmd struct {
	date     string
	security string
	venue    string
	amount   string
}

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "record a sale for a monetary amount" }
func (*withdrawCmd) Usage() string {
	return `pvl withdraw -s <security> -a <amount> [-d <date>] [-venue <venue>]

  Records a value-based sale of units worth the given amount at the closing
  price on the date.
`
}

func (c *withdrawCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Execution date (YYYY-MM-DD).")
	f.StringVar(&c.security, "s", "", "Security ticker or ISIN.")
	f.StringVar(&c.venue, "venue", "", "Listing venue (MIC), used to resolve ISINs.")
	f.StringVar(&c.amount, "a", "", "Amount withdrawn, in the asset's currency.")
}

func (c *withdrawCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rec, err := valueRecord(holdings.CmdWithdraw, c.date, c.security, c.venue, c.amount)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return appendRecord(rec)
}

// valueRecord validates the shared invest/withdraw flags into a ledger
// record.
func valueRecord(command holdings.Command, day, security, venue, amount string) (holdings.Record, error) {
	var rec holdings.Record
	if security == "" {
		return rec, fmt.Errorf("missing required flag -s")
	}
	if amount == "" {
		return rec, fmt.Errorf("missing required flag -a")
	}
	if venue != "" {
		if err := holdings.ValidateMIC(venue); err != nil {
			return rec, fmt.Errorf("invalid venue %q: %w", venue, err)
		}
	}
	d, err := date.Parse(day)
	if err != nil {
		return rec, fmt.Errorf("invalid date: %w", err)
	}
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return rec, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if !a.IsPositive() {
		return rec, fmt.Errorf("amount must be positive, got %s", a)
	}
	return holdings.Record{
		Command:    command,
		Date:       d,
		Identifier: security,
		Venue:      venue,
		Requested:  a,
	}, nil
}
