package export

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cleared-dev/icsimport/internal/model"
)

// WriteText renders a human-readable summary followed by a transaction table.
func WriteText(w io.Writer, result *model.ParseResult) error {
	h := result.Header
	fmt.Fprintf(w, "Statement:        %s\n", result.StatementID)
	fmt.Fprintf(w, "Statement date:   %s\n", h.StatementDate.Format(dateFormat))
	if h.DebitIBAN != "" {
		fmt.Fprintf(w, "Debit IBAN:       %s\n", h.DebitIBAN)
	}
	fmt.Fprintf(w, "Debit date:       %s\n", h.EstimatedDebitDate.Format(dateFormat))
	fmt.Fprintf(w, "New expenses:     € %s\n", h.TotalNewExpenses.StringFixed(2))
	fmt.Fprintf(w, "Parsed debit:     € %s\n", result.TotalDebit().StringFixed(2))
	fmt.Fprintf(w, "Parsed credit:    € %s\n\n", result.TotalCredit().StringFixed(2))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tBOOKED\tDESCRIPTION\tCITY\tCOUNTRY\tFOREIGN\tEUR\t")
	for _, tx := range result.Transactions {
		foreign := ""
		if tx.ForeignAmount.Valid {
			foreign = tx.ForeignAmount.Decimal.StringFixed(2) + " " + tx.ForeignCurrency
		}
		amount := tx.AmountEUR.StringFixed(2)
		if tx.IsDebit() {
			amount = "-" + amount
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			tx.TransactionDate.Format(dateFormat), tx.BookingDate.Format(dateFormat),
			tx.Description, tx.City, tx.Country, foreign, amount)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}

	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "\nWARNING: %s\n", warn)
	}
	return nil
}
