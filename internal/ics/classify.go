package ics

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// RowOutcome is the result of classifying one row. It is one of Skip,
// HeaderRow, ExchangeRateAnnotation or TransactionCandidate.
type RowOutcome interface {
	rowOutcome()
}

// SkipReason names the predicate that discarded a row.
type SkipReason string

const (
	SkipBoilerplate SkipReason = "boilerplate"
	SkipAddress     SkipReason = "address"
	SkipPageNumber  SkipReason = "page-number"
	SkipTableHeader SkipReason = "table-header"
	SkipCardholder  SkipReason = "cardholder"
)

// Skip is a row that carries no statement data.
type Skip struct {
	Reason SkipReason
}

// HeaderRow is a row holding statement header labels or values. The header
// itself is extracted separately from the full row list.
type HeaderRow struct {
	Field string
}

// ExchangeRateAnnotation is a "Wisselkoers USD 1,16644" line that belongs to
// the transaction parsed just before it.
type ExchangeRateAnnotation struct {
	Currency string
	Rate     decimal.Decimal
}

// TransactionCandidate is a row that may be a transaction line.
type TransactionCandidate struct {
	Row Row
}

func (Skip) rowOutcome()                   {}
func (HeaderRow) rowOutcome()              {}
func (ExchangeRateAnnotation) rowOutcome() {}
func (TransactionCandidate) rowOutcome()   {}

// Header field names reported by HeaderRow beyond the required ones.
const (
	FieldDebitIBAN          = "debitIban"
	FieldEstimatedDebitDate = "estimatedDebitDate"
)

var exchangeRatePattern = regexp.MustCompile(`^Wisselkoers\s+([A-Z]{3})\s+(\d+(?:[.,]\d+)?)(?:\s|$)`)

var boilerplatePhrases = []string{
	"international card services",
	"icscards.nl",
	"kamer van koophandel",
	"de nederlandsche bank",
	"autoriteit financiële markten",
	"klantenservice",
	"dit overzicht",
	"minimaal te betalen",
}

var (
	addressPattern     = regexp.MustCompile(`(?i)^(?:postbus|postadres|bezoekadres)\b`)
	postcodePattern    = regexp.MustCompile(`^\d{4}\s?[A-Z]{2}\b`)
	phonePattern       = regexp.MustCompile(`(?i)\b(?:telefoon|tel\.)\s*[:+\d(]`)
	pageNumberPattern  = regexp.MustCompile(`(?i)^pagina\s+\d+(?:\s+van\s+\d+)?$`)
	tableHeaderPattern = regexp.MustCompile(`(?i)^(?:datum transactie|datum boeking|omschrijving|bedrag in euro)`)
	cardholderPattern  = regexp.MustCompile(`^[A-Z][A-Z .'\-]{2,39}$`)
)

// skipPredicates are applied in order; the first match wins.
var skipPredicates = []struct {
	reason SkipReason
	match  func(text string) bool
}{
	{SkipBoilerplate, func(text string) bool {
		lower := strings.ToLower(text)
		for _, p := range boilerplatePhrases {
			if strings.Contains(lower, p) {
				return true
			}
		}
		return false
	}},
	{SkipAddress, func(text string) bool {
		return addressPattern.MatchString(text) || postcodePattern.MatchString(text) || phonePattern.MatchString(text)
	}},
	{SkipPageNumber, pageNumberPattern.MatchString},
	{SkipTableHeader, tableHeaderPattern.MatchString},
	{SkipCardholder, cardholderPattern.MatchString},
}

// ClassifyRow decides what a single row is.
func ClassifyRow(row Row) RowOutcome {
	text := row.Text()
	if text == "" {
		return Skip{Reason: SkipBoilerplate}
	}

	if m := exchangeRatePattern.FindStringSubmatch(text); m != nil {
		rate, err := parseRate(m[2])
		if err != nil {
			return Skip{Reason: SkipBoilerplate}
		}
		return ExchangeRateAnnotation{Currency: m[1], Rate: rate}
	}

	// Merchant names may contain boilerplate words ("ZIGGO KLANTENSERVICE"),
	// so rows led by a transaction and booking date are never skipped.
	if !startsWithDatePair(row) {
		for _, p := range skipPredicates {
			if p.match(text) {
				return Skip{Reason: p.reason}
			}
		}
	}

	if field, ok := headerField(row, text); ok {
		return HeaderRow{Field: field}
	}

	return TransactionCandidate{Row: row}
}

// ClassifyRows classifies every row, preserving order.
func ClassifyRows(rows []Row) []RowOutcome {
	out := make([]RowOutcome, len(rows))
	for i, r := range rows {
		out[i] = ClassifyRow(r)
	}
	return out
}

func headerField(row Row, text string) (string, bool) {
	if hasAbbreviatedDate(row) {
		return "", false
	}
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "klantnummer"):
		return FieldCustomerNumber, true
	case strings.Contains(lower, newExpensesLabel), strings.HasPrefix(text, "€"):
		return FieldTotalNewExpenses, true
	case debitDatePattern.MatchString(text):
		return FieldEstimatedDebitDate, true
	case statementDatePattern.MatchString(text):
		return FieldStatementDate, true
	case ibanPattern.MatchString(text):
		return FieldDebitIBAN, true
	}
	return "", false
}

func startsWithDatePair(row Row) bool {
	tokens := row.Tokens()
	return len(tokens) >= 2 && isAbbreviatedDate(tokens[0]) && isAbbreviatedDate(tokens[1])
}

func hasAbbreviatedDate(row Row) bool {
	for _, tok := range row.Tokens() {
		if isAbbreviatedDate(tok) {
			return true
		}
	}
	return false
}
