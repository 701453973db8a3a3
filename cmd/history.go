package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/jzelinka/holdings"
	"github.com/jzelinka/holdings/date"
)

type historyCmd struct {
	start  string
	ticker string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "print the daily valuation table" }
func (*historyCmd) Usage() string {
	return `pvl history [-s <start_date>] [-t <ticker>] [-currency <ccy>]

  Prints the portfolio's daily valuation series, or a single position's with
  -t. Days without genuine quotes are marked filled.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "First date to print (YYYY-MM-DD). Defaults to the whole series.")
	f.StringVar(&c.ticker, "t", "", "Restrict to one position's series.")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := loadPortfolio(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	series, err := c.series(ctx, p)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var from date.Date
	if c.start != "" {
		if from, err = date.Parse(c.start); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Date\tBase\tValue\tProfit\tGrowth\tData\t")
	for day, row := range series.Rows() {
		if day.Before(from) {
			continue
		}
		data := "quoted"
		if !row.Mask {
			data = "filled"
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.4f\t%s\t\n",
			day, row.Base, row.Price, row.Profit, row.Growth, data)
	}
	w.Flush()
	return subcommands.ExitSuccess
}

func (c *historyCmd) series(ctx context.Context, p *holdings.Portfolio) (*holdings.Series, error) {
	if c.ticker == "" {
		return p.Evaluate(ctx)
	}
	return p.Valuation(ctx, c.ticker)
}
