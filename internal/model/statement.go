package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the money flow of a statement transaction.
type Direction string

const (
	DirectionDebit  Direction = "debit"  // "Af" on the statement
	DirectionCredit Direction = "credit" // "Bij" on the statement
)

// StatementHeader holds the account-level fields of one statement.
type StatementHeader struct {
	StatementDate      time.Time
	CustomerNumber     string // 11 digits
	TotalNewExpenses   decimal.Decimal
	DebitIBAN          string // empty when the statement does not name one
	EstimatedDebitDate time.Time
}

// Transaction is one reconstructed statement line.
type Transaction struct {
	TransactionDate time.Time
	BookingDate     time.Time
	Description     string
	City            string
	Country         string // 3-letter code or empty
	ForeignAmount   decimal.NullDecimal
	ForeignCurrency string // empty when the transaction was booked in EUR
	ExchangeRate    decimal.NullDecimal
	AmountEUR       decimal.Decimal
	Direction       Direction
}

// IsDebit reports whether the transaction takes money out of the account.
func (t Transaction) IsDebit() bool {
	return t.Direction == DirectionDebit
}

// ParseResult is the output of parsing one statement document.
type ParseResult struct {
	Header       StatementHeader
	Transactions []Transaction
	Warnings     []string
	StatementID  string
}

// TotalDebit sums AmountEUR over all debit transactions.
func (r ParseResult) TotalDebit() decimal.Decimal {
	total := decimal.Zero
	for _, tx := range r.Transactions {
		if tx.IsDebit() {
			total = total.Add(tx.AmountEUR)
		}
	}
	return total
}

// TotalCredit sums AmountEUR over all credit transactions.
func (r ParseResult) TotalCredit() decimal.Decimal {
	total := decimal.Zero
	for _, tx := range r.Transactions {
		if !tx.IsDebit() {
			total = total.Add(tx.AmountEUR)
		}
	}
	return total
}
