package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/icsimport/internal/model"
)

const (
	summarySheet      = "summary"
	transactionsSheet = "transactions"
)

var transactionColumns = []string{
	"Transaction date", "Booking date", "Description", "City", "Country",
	"Foreign amount", "Currency", "Exchange rate", "Amount (EUR)", "Direction",
}

// BuildWorkbook renders result as a workbook with a summary sheet and a
// transactions sheet. Amounts are written as numbers.
func BuildWorkbook(result *model.ParseResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(transactionsSheet); err != nil {
		return nil, fmt.Errorf("adding sheet: %w", err)
	}

	h := result.Header
	summary := [][2]any{
		{"Statement", result.StatementID},
		{"Statement date", h.StatementDate.Format(dateFormat)},
		{"Customer number", h.CustomerNumber},
		{"Debit IBAN", h.DebitIBAN},
		{"Estimated debit date", h.EstimatedDebitDate.Format(dateFormat)},
		{"Total new expenses", h.TotalNewExpenses.InexactFloat64()},
		{"Total debit", result.TotalDebit().InexactFloat64()},
		{"Total credit", result.TotalCredit().InexactFloat64()},
		{"Transactions", len(result.Transactions)},
	}
	for i, kv := range summary {
		if err := setRow(f, summarySheet, i+1, kv[0], kv[1]); err != nil {
			return nil, err
		}
	}
	for i, w := range result.Warnings {
		if err := setRow(f, summarySheet, len(summary)+2+i, "Warning", w); err != nil {
			return nil, err
		}
	}

	header := make([]any, len(transactionColumns))
	for i, c := range transactionColumns {
		header[i] = c
	}
	if err := setRow(f, transactionsSheet, 1, header...); err != nil {
		return nil, err
	}
	for i, tx := range result.Transactions {
		values := []any{
			tx.TransactionDate.Format(dateFormat),
			tx.BookingDate.Format(dateFormat),
			tx.Description,
			tx.City,
			tx.Country,
			nil,
			tx.ForeignCurrency,
			nil,
			tx.AmountEUR.InexactFloat64(),
			string(tx.Direction),
		}
		if tx.ForeignAmount.Valid {
			values[5] = tx.ForeignAmount.Decimal.InexactFloat64()
		}
		if tx.ExchangeRate.Valid {
			values[7] = tx.ExchangeRate.Decimal.InexactFloat64()
		}
		if err := setRow(f, transactionsSheet, i+2, values...); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

// WriteXLSX writes result as an XLSX workbook.
func WriteXLSX(w io.Writer, result *model.ParseResult) error {
	f, err := BuildWorkbook(result)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
