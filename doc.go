// Package holdings turns a sparse ledger of buy and sell events into
// continuous daily valuation series.
//
// A Transaction compounds an asset's daily returns into a growth series from
// its execution date. A Position aggregates its transactions, runs FIFO lot
// accounting for realized profit and break-even, and converts to other
// currencies with historical rates for cost basis and current rates for
// market value. A Portfolio sums converted positions into one table in its
// base currency and derives annualized performance.
//
// Prices come from a Quoter (see the yahoo package) memoized by a Market;
// symbol resolution is delegated to a Resolver (see the figi package).
// Ordinary market-data gaps never fail a ledger operation; they are resolved
// with documented fallbacks and logged warnings. Only missing exchange-rate
// data is a hard error.
package holdings
