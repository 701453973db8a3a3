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

type buyCmd struct {
	date     string
	security string
	venue    string
	quantity string
	price    string
	currency string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "record the purchase of a number of units" }
func (*buyCmd) Usage() string {
	return `pvl buy -s <security> -q <quantity> [-p <price> [-c <currency>]] [-d <date>] [-venue <venue>]

  Records a whole-unit purchase. Without -p the closing price at or before
  the date is used.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Execution date (YYYY-MM-DD).")
	f.StringVar(&c.security, "s", "", "Security ticker or ISIN.")
	f.StringVar(&c.venue, "venue", "", "Listing venue (MIC), used to resolve ISINs.")
	f.StringVar(&c.quantity, "q", "", "Number of units bought.")
	f.StringVar(&c.price, "p", "", "Execution price per unit.")
	f.StringVar(&c.currency, "c", "", "Currency of the price. Defaults to the asset's currency.")
}

func (c *buyCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rec, err := tradeRecord(holdings.CmdBuy, c.date, c.security, c.venue, c.quantity, c.price, c.currency)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return appendRecord(rec)
}

// tradeRecord validates the shared buy/sell flags into a ledger record.
func tradeRecord(command holdings.Command, day, security, venue, quantity, price, currency string) (holdings.Record, error) {
	var rec holdings.Record
	if security == "" {
		return rec, fmt.Errorf("missing required flag -s")
	}
	if quantity == "" {
		return rec, fmt.Errorf("missing required flag -q")
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
	q, err := decimal.NewFromString(quantity)
	if err != nil {
		return rec, fmt.Errorf("invalid quantity %q: %w", quantity, err)
	}
	if !q.IsPositive() {
		return rec, fmt.Errorf("quantity must be positive, got %s", q)
	}
	var p decimal.Decimal
	if price != "" {
		if p, err = decimal.NewFromString(price); err != nil {
			return rec, fmt.Errorf("invalid price %q: %w", price, err)
		}
	}
	if currency != "" {
		if err := holdings.ValidateCurrency(currency); err != nil {
			return rec, err
		}
	}
	return holdings.Record{
		Command:    command,
		Date:       d,
		Identifier: security,
		Venue:      venue,
		Requested:  q,
		Price:      p,
		Currency:   currency,
	}, nil
}
