package ics

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/icsimport/internal/model"
)

var (
	statementDatePattern  = regexp.MustCompile(`(?i)\b(\d{1,2}\s+(?:januari|februari|maart|april|mei|juni|juli|augustus|september|oktober|november|december)\s+\d{4})\b`)
	labeledCustomerNumber = regexp.MustCompile(`(?i)klantnummer\D{0,20}(\d{11})\b`)
	bareCustomerNumber    = regexp.MustCompile(`\b(\d{11})\b`)
	ibanPattern           = regexp.MustCompile(`\b([A-Z]{2}\d{2}[A-Z]{4}\d{10})\b`)
	debitDatePattern      = regexp.MustCompile(`(?i)omstreeks\s+(\d{1,2}\s+[a-z]+\s+\d{4})`)
	euroAmountPattern     = regexp.MustCompile(`€\s*(\d{1,3}(?:\.\d{3})+,\d{2}|\d+,\d{2})`)
)

// newExpensesLabel marks the row above the balance summary values.
const newExpensesLabel = "nieuwe uitgaven"

// newExpensesColumn is the position of "Totaal nieuwe uitgaven" among the
// four (amount, direction) columns of the balance summary: previous balance,
// payments received, new expenses, new balance.
const newExpensesColumn = 2

// ExtractHeader pulls the statement-level fields out of the grouped rows.
// The statement date, customer number and new-expenses total are required.
func ExtractHeader(rows []Row) (model.StatementHeader, error) {
	text := FullText(rows)

	var h model.StatementHeader

	m := statementDatePattern.FindStringSubmatch(text)
	if m == nil {
		return h, &MissingFieldError{Field: FieldStatementDate}
	}
	date, err := ParseFullDate(m[1])
	if err != nil {
		return h, fmt.Errorf("parsing statement date: %w", err)
	}
	h.StatementDate = date

	h.CustomerNumber = findCustomerNumber(text)
	if h.CustomerNumber == "" {
		return h, &MissingFieldError{Field: FieldCustomerNumber}
	}

	total, err := findNewExpensesTotal(rows)
	if err != nil {
		return h, err
	}
	h.TotalNewExpenses = total

	if m := ibanPattern.FindStringSubmatch(text); m != nil {
		h.DebitIBAN = m[1]
	}

	h.EstimatedDebitDate = firstOfMonth(h.StatementDate)
	if m := debitDatePattern.FindStringSubmatch(text); m != nil {
		if d, err := ParseFullDate(m[1]); err == nil {
			h.EstimatedDebitDate = d
		}
	}

	return h, nil
}

func findCustomerNumber(text string) string {
	if m := labeledCustomerNumber.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := bareCustomerNumber.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// findNewExpensesTotal locates the balance summary label row and reads the
// third euro amount from the row below it.
func findNewExpensesTotal(rows []Row) (decimal.Decimal, error) {
	for i, row := range rows {
		if !strings.Contains(strings.ToLower(row.Text()), newExpensesLabel) {
			continue
		}
		if i+1 >= len(rows) {
			break
		}
		matches := euroAmountPattern.FindAllStringSubmatch(rows[i+1].Text(), -1)
		if len(matches) <= newExpensesColumn {
			break
		}
		// Summary figures group thousands with dots; row amounts never do.
		amount, err := ParseAmount(strings.ReplaceAll(matches[newExpensesColumn][1], ".", ""))
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("parsing total new expenses: %w", err)
		}
		return amount, nil
	}
	return decimal.Decimal{}, &MissingFieldError{Field: FieldTotalNewExpenses}
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
