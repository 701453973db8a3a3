package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/jzelinka/holdings"
	"github.com/jzelinka/holdings/date"
)

type sellCmd struct {
	date     string
	security string
	venue    string
	quantity string
	price    string
	currency string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "record the sale of a number of units" }
func (*sellCmd) Usage() string {
	return `pvl sell -s <security> -q <quantity> [-p <price> [-c <currency>]] [-d <date>] [-venue <venue>]

  Records a whole-unit sale. Selling more than held closes the position
  instead of going short.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", date.Today().String(), "Execution date (YYYY-MM-DD).")
	f.StringVar(&c.security, "s", "", "Security ticker or ISIN.")
	f.StringVar(&c.venue, "venue", "", "Listing venue (MIC), used to resolve ISINs.")
	f.StringVar(&c.quantity, "q", "", "Number of units sold.")
	f.StringVar(&c.price, "p", "", "Execution price per unit.")
	f.StringVar(&c.currency, "c", "", "Currency of the price. Defaults to the asset's currency.")
}

func (c *sellCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rec, err := tradeRecord(holdings.CmdSell, c.date, c.security, c.venue, c.quantity, c.price, c.currency)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	return appendRecord(rec)
}
