package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cleared-dev/icsimport/internal/model"
)

// StatementJSON is the JSON form of a parsed statement. Amounts are strings
// with two decimals so no precision is lost to floating point.
type StatementJSON struct {
	StatementID  string            `json:"statementId"`
	Header       HeaderJSON        `json:"header"`
	Transactions []TransactionJSON `json:"transactions"`
	Warnings     []string          `json:"warnings"`
	TotalDebit   string            `json:"totalDebit"`
	TotalCredit  string            `json:"totalCredit"`
}

// HeaderJSON is the JSON form of a statement header.
type HeaderJSON struct {
	StatementDate      string `json:"statementDate"`
	CustomerNumber     string `json:"customerNumber"`
	TotalNewExpenses   string `json:"totalNewExpenses"`
	DebitIBAN          string `json:"debitIban,omitempty"`
	EstimatedDebitDate string `json:"estimatedDebitDate"`
}

// TransactionJSON is the JSON form of one transaction. Optional fields are
// null when absent.
type TransactionJSON struct {
	TransactionDate string  `json:"transactionDate"`
	BookingDate     string  `json:"bookingDate"`
	Description     string  `json:"description"`
	City            *string `json:"city"`
	Country         *string `json:"country"`
	ForeignAmount   *string `json:"foreignAmount"`
	ForeignCurrency *string `json:"foreignCurrency"`
	ExchangeRate    *string `json:"exchangeRate"`
	AmountEUR       string  `json:"amountEur"`
	Direction       string  `json:"direction"`
}

// NewStatementJSON converts a ParseResult into its JSON form.
func NewStatementJSON(result *model.ParseResult) StatementJSON {
	h := result.Header
	out := StatementJSON{
		StatementID: result.StatementID,
		Header: HeaderJSON{
			StatementDate:      h.StatementDate.Format(dateFormat),
			CustomerNumber:     h.CustomerNumber,
			TotalNewExpenses:   h.TotalNewExpenses.StringFixed(2),
			DebitIBAN:          h.DebitIBAN,
			EstimatedDebitDate: h.EstimatedDebitDate.Format(dateFormat),
		},
		Transactions: make([]TransactionJSON, 0, len(result.Transactions)),
		Warnings:     result.Warnings,
		TotalDebit:   result.TotalDebit().StringFixed(2),
		TotalCredit:  result.TotalCredit().StringFixed(2),
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}

	for _, tx := range result.Transactions {
		tj := TransactionJSON{
			TransactionDate: tx.TransactionDate.Format(dateFormat),
			BookingDate:     tx.BookingDate.Format(dateFormat),
			Description:     tx.Description,
			City:            optional(tx.City),
			Country:         optional(tx.Country),
			ForeignCurrency: optional(tx.ForeignCurrency),
			AmountEUR:       tx.AmountEUR.StringFixed(2),
			Direction:       string(tx.Direction),
		}
		if tx.ForeignAmount.Valid {
			tj.ForeignAmount = optional(tx.ForeignAmount.Decimal.StringFixed(2))
		}
		if tx.ExchangeRate.Valid {
			tj.ExchangeRate = optional(tx.ExchangeRate.Decimal.String())
		}
		out.Transactions = append(out.Transactions, tj)
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// WriteJSON writes result as indented JSON.
func WriteJSON(w io.Writer, result *model.ParseResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewStatementJSON(result)); err != nil {
		return fmt.Errorf("encoding statement JSON: %w", err)
	}
	return nil
}
