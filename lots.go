package holdings

// lot is a FIFO accounting unit: a parcel of units bought at one price.
// Lots are ephemeral, rebuilt from the transaction list on demand.
type lot struct {
	amount Quantity
	price  Money
}

// replay runs the FIFO queue over transactions in ledger order. Buys push a
// lot at the new end; a sell consumes from the old end, realizing
// consumed x (sellPrice - lotPrice) per lot, and requeues the remainder of a
// partially consumed lot. It returns the realized profit and the surviving
// lots.
func replay(txs []*Transaction) (realized Money, open []lot) {
	for _, tx := range txs {
		amount, price := tx.Amount(), tx.Price()
		if !amount.IsNegative() {
			open = append(open, lot{amount: amount, price: price})
			continue
		}
		left := amount.Neg()
		for left.IsPositive() && len(open) > 0 {
			oldest := open[0]
			consumed := oldest.amount
			if left.LessThan(consumed) {
				consumed = left
			}
			realized = realized.Add(price.Sub(oldest.price).Mul(consumed))
			left = left.Sub(consumed)
			if rest := oldest.amount.Sub(consumed); rest.IsPositive() {
				open[0].amount = rest
			} else {
				open = open[1:]
			}
		}
	}
	return realized, open
}

// breakEven returns the weighted-average remaining cost per held unit, or a
// zero price when nothing is held.
func breakEven(open []lot) Money {
	var cost Money
	var held Quantity
	for _, l := range open {
		cost = cost.Add(l.price.Mul(l.amount))
		held = held.Add(l.amount)
	}
	if !held.IsPositive() {
		return M(0, cost.Currency())
	}
	return cost.Div(held)
}
