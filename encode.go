package holdings

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/jzelinka/holdings/date"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Command tags a ledger record with the user-facing event it encodes.
type Command string

const (
	// CmdBuy and CmdSell are whole-unit events carrying a quantity.
	CmdBuy  Command = "buy"
	CmdSell Command = "sell"
	// CmdInvest and CmdWithdraw are value-based events carrying a monetary
	// amount; the quantity is derived from the day's close.
	CmdInvest   Command = "invest"
	CmdWithdraw Command = "withdraw"
)

// Record is one JSONL line of the persisted ledger. Requested is a quantity
// for buy/sell and a monetary amount for invest/withdraw, always positive;
// the command carries the sign.
type Record struct {
	Command    Command         `json:"command"`
	Date       date.Date       `json:"date"`
	Identifier string          `json:"security"`
	Venue      string          `json:"venue,omitempty"`
	Requested  decimal.Decimal `json:"requested"`
	Price      decimal.Decimal `json:"price,omitempty"`
	Currency   string          `json:"currency,omitempty"`
}

// kindAndSign maps the command to the engine's event shape.
func (r Record) kindAndSign() (Kind, bool, error) {
	switch r.Command {
	case CmdBuy:
		return WholeUnit, false, nil
	case CmdSell:
		return WholeUnit, true, nil
	case CmdInvest:
		return ValueBased, false, nil
	case CmdWithdraw:
		return ValueBased, true, nil
	default:
		return 0, false, fmt.Errorf("unknown ledger command %q", r.Command)
	}
}

// MarshalJSON writes the record with a stable field order, so ledger files
// diff cleanly.
func (r Record) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", r.Command)
	w.Append("date", r.Date)
	w.Append("security", r.Identifier)
	w.Optional("venue", r.Venue)
	w.Append("requested", r.Requested)
	if !r.Price.IsZero() {
		w.Append("price", r.Price)
		w.Optional("currency", r.Currency)
	}
	return w.MarshalJSON()
}

// EncodeRecords writes records as JSONL, one object per line.
func EncodeRecords(w io.Writer, records ...Record) error {
	for _, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}

// DecodeRecords reads a JSONL ledger, skipping blank lines.
func DecodeRecords(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("decoding ledger line %q: %w", line, err)
		}
		if _, _, err := rec.kindAndSign(); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Replay applies records to the portfolio in file order.
func Replay(ctx context.Context, p *Portfolio, records []Record) error {
	for _, rec := range records {
		k, sell, err := rec.kindAndSign()
		if err != nil {
			return err
		}
		requested := Q(rec.Requested)
		if sell {
			requested = requested.Neg()
		}
		var price Money
		if !rec.Price.IsZero() {
			price = M(rec.Price, rec.Currency)
		}
		if _, err := p.NewTransaction(ctx, rec.Identifier, rec.Venue, k, rec.Date, requested, price); err != nil {
			return fmt.Errorf("replaying %s %s on %s: %w", rec.Command, rec.Identifier, rec.Date, err)
		}
	}
	return nil
}
