// Package export writes parsed statements as CSV, JSON, XLSX and plain text.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/icsimport/internal/model"
)

// Header is the CSV header for exported transactions.
const Header = "statement_id,transaction_date,booking_date,description,city,country,foreign_amount,foreign_currency,exchange_rate,amount_eur,direction"

const (
	numFields      = 11
	dateFormat     = "2006-01-02"
	colStatementID = 0
	colTxDate      = 1
	colBookDate    = 2
	colDesc        = 3
	colCity        = 4
	colCountry     = 5
	colForeignAmt  = 6
	colForeignCur  = 7
	colRate        = 8
	colAmountEUR   = 9
	colDirection   = 10
)

// WriteTransactions writes every transaction of result as CSV, including
// the header row.
func WriteTransactions(w io.Writer, result *model.ParseResult) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, tx := range result.Transactions {
		if err := cw.Write(MarshalTransaction(result.StatementID, tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row ([]string).
// Absent foreign amounts and exchange rates are left empty.
func MarshalTransaction(statementID string, tx model.Transaction) []string {
	row := make([]string, numFields)
	row[colStatementID] = statementID
	row[colTxDate] = tx.TransactionDate.Format(dateFormat)
	row[colBookDate] = tx.BookingDate.Format(dateFormat)
	row[colDesc] = tx.Description
	row[colCity] = tx.City
	row[colCountry] = tx.Country

	if tx.ForeignAmount.Valid {
		row[colForeignAmt] = tx.ForeignAmount.Decimal.StringFixed(2)
	}
	row[colForeignCur] = tx.ForeignCurrency
	if tx.ExchangeRate.Valid {
		row[colRate] = tx.ExchangeRate.Decimal.String()
	}

	row[colAmountEUR] = tx.AmountEUR.StringFixed(2)
	row[colDirection] = string(tx.Direction)
	return row
}
