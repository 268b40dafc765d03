package ics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/icsimport/internal/model"
)

// DefaultTotalTolerance absorbs rounding between the stated total and the
// sum of parsed debits.
var DefaultTotalTolerance = decimal.RequireFromString("0.02")

// CrossValidate compares the sum of parsed debit transactions with the
// statement's stated new-expenses total. A mismatch larger than tolerance
// yields one warning; it never fails the parse.
func CrossValidate(header model.StatementHeader, txs []model.Transaction, tolerance decimal.Decimal) []string {
	sum := decimal.Zero
	for _, tx := range txs {
		if tx.IsDebit() {
			sum = sum.Add(tx.AmountEUR)
		}
	}

	diff := sum.Sub(header.TotalNewExpenses).Abs()
	if diff.LessThanOrEqual(tolerance) {
		return nil
	}
	return []string{fmt.Sprintf(
		"sum of parsed debit transactions (€ %s) differs from stated total new expenses (€ %s) by € %s",
		sum.StringFixed(2), header.TotalNewExpenses.StringFixed(2), diff.StringFixed(2),
	)}
}
