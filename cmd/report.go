package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/jzelinka/holdings"
)

type reportCmd struct{}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "show the current value of every position" }
func (*reportCmd) Usage() string {
	return `pvl report [-currency <ccy>] [-ledger-file <file>]

  Replays the ledger, fetches prices and prints each position's market value,
  profit and break-even in the base currency, plus the portfolio total and
  annualized performance.
`
}

func (*reportCmd) SetFlags(*flag.FlagSet) {}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := loadPortfolio(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	values, err := p.LastValues(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if len(values) == 0 {
		fmt.Println("ledger is empty")
		return subcommands.ExitSuccess
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Ticker\tName\tHeld\tValue\tProfit\tRealized\tGrowth\tBreak-even\t")
	var total holdings.Money
	for _, v := range values {
		total = total.Add(v.Value)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			v.Ticker, v.Name, v.Held, v.Value, v.Profit.SignedString(),
			v.Realized.SignedString(), v.Growth.SignedString(), v.BreakEven)
	}
	fmt.Fprintf(w, "Total\t\t\t%s\t\t\t\t\t\n", total)
	w.Flush()

	perf, err := p.PerformancePA(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("\nAnnualized performance: %s\n", perf.SignedString())
	return subcommands.ExitSuccess
}
