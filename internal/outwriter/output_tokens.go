package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/hmpi/internal/contract"
	"github.com/huangsam/hmpi/internal/ledger"
	"github.com/huangsam/hmpi/schema"
)

// WriteQuote outputs a token quote or balance.
func WriteQuote(q ledger.Quote, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, q)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			header := []string{"user", "rows", "tokens_needed", "current_tokens", "sufficient_tokens", "tokens_short"}
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				return cw.Write([]string{
					q.User,
					strconv.Itoa(q.Rows),
					strconv.Itoa(q.Tokens),
					strconv.Itoa(q.Balance),
					strconv.FormatBool(q.Sufficient),
					strconv.Itoa(q.Short),
				})
			})
		}, "Wrote CSV")
	case schema.TextOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeQuoteText(w, q, cfg)
		}, "Wrote text")
	default:
		return unsupportedMode(cfg.Output, "tokens")
	}
}

func writeQuoteText(w io.Writer, q ledger.Quote, cfg *contract.Config) error {
	if _, err := fmt.Fprintf(w, "%s\n", heading("🪙", "Account "+q.User, cfg)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Balance: %d tokens\n", q.Balance); err != nil {
		return err
	}
	if q.Rows == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Cost of %d rows: %d tokens\n", q.Rows, q.Tokens); err != nil {
		return err
	}
	if q.Sufficient {
		_, err := fmt.Fprintln(w, "Balance covers the request")
		return err
	}
	_, err := fmt.Fprintf(w, "Short by %d tokens\n", q.Short)
	return err
}
