package ics

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/icsimport/internal/model"
)

const (
	markerDebit  = "Af"
	markerCredit = "Bij"
)

// priorBalanceCollection is the line collecting the previous statement's
// balance. It has a transaction's shape but is not a new transaction.
const priorBalanceCollection = "GEINCASSEERD VORIG SALDO"

var threeLetterCode = regexp.MustCompile(`^[A-Z]{3}$`)

// countryCodes are ISO 3166 alpha-3 codes that appear after the merchant
// city. A 3-letter token outside this set in the amount area is treated as a
// currency code.
var countryCodes = map[string]bool{
	"AND": true, "ARE": true, "ARG": true, "AUS": true, "AUT": true, "BEL": true,
	"BGR": true, "BRA": true, "CAN": true, "CHE": true, "CHL": true, "CHN": true,
	"COL": true, "CUW": true, "CYP": true, "CZE": true, "DEU": true, "DNK": true,
	"EGY": true, "ESP": true, "EST": true, "FIN": true, "FRA": true, "GBR": true,
	"GRC": true, "HKG": true, "HRV": true, "HUN": true, "IDN": true, "IND": true,
	"IRL": true, "ISL": true, "ISR": true, "ITA": true, "JPN": true, "KOR": true,
	"LTU": true, "LUX": true, "LVA": true, "MAR": true, "MCO": true, "MEX": true,
	"MLT": true, "MYS": true, "NLD": true, "NOR": true, "NZL": true, "PHL": true,
	"POL": true, "PRT": true, "ROU": true, "SGP": true, "SRB": true, "SVK": true,
	"SVN": true, "SWE": true, "THA": true, "TUR": true, "TWN": true, "UKR": true,
	"USA": true, "VNM": true, "ZAF": true,
}

// ParseTransactionRow converts a candidate row into a Transaction. It returns
// ok=false when the row does not have the shape of a transaction line, and an
// error when it does but a date token cannot be resolved.
func ParseTransactionRow(row Row, statementYear int, statementMonth time.Month) (model.Transaction, bool, error) {
	tokens := row.Tokens()

	var dateIdx []int
	for i, tok := range tokens {
		if isAbbreviatedDate(tok) {
			dateIdx = append(dateIdx, i)
			if len(dateIdx) == 2 {
				break
			}
		}
	}
	if len(dateIdx) < 2 {
		return model.Transaction{}, false, nil
	}

	tail := tokens[dateIdx[1]+1:]
	if len(tail) < 2 {
		return model.Transaction{}, false, nil
	}

	var direction model.Direction
	switch tail[len(tail)-1] {
	case markerDebit:
		direction = model.DirectionDebit
	case markerCredit:
		direction = model.DirectionCredit
	default:
		return model.Transaction{}, false, nil
	}

	amount, err := ParseAmount(tail[len(tail)-2])
	if err != nil {
		return model.Transaction{}, false, nil
	}

	txDate, err := ParseAbbreviatedDate(tokens[dateIdx[0]], statementYear, statementMonth)
	if err != nil {
		return model.Transaction{}, false, fmt.Errorf("transaction date: %w", err)
	}
	bookDate, err := ParseAbbreviatedDate(tokens[dateIdx[1]], statementYear, statementMonth)
	if err != nil {
		return model.Transaction{}, false, fmt.Errorf("booking date: %w", err)
	}

	tx := model.Transaction{
		TransactionDate: txDate,
		BookingDate:     bookDate,
		AmountEUR:       amount,
		Direction:       direction,
	}

	block := tail[:len(tail)-2]
	block = extractForeignAmount(block, &tx)
	describe(block, &tx)

	return tx, true, nil
}

// extractForeignAmount looks at most two tokens back from the EUR amount for
// a currency code preceded by an amount. It returns the description block
// that remains in front of them.
func extractForeignAmount(block []string, tx *model.Transaction) []string {
	for k := 1; k <= 2; k++ {
		i := len(block) - k
		if i < 1 {
			break
		}
		tok := block[i]
		if !threeLetterCode.MatchString(tok) || countryCodes[tok] {
			continue
		}
		foreign, err := ParseAmount(block[i-1])
		if err != nil {
			break
		}
		tx.ForeignAmount = decimal.NewNullDecimal(foreign)
		tx.ForeignCurrency = tok
		return block[:i-1]
	}
	return block
}

// describe splits the leading tokens into description, city and country.
func describe(block []string, tx *model.Transaction) {
	if n := len(block); n > 0 && threeLetterCode.MatchString(block[n-1]) {
		tx.Country = block[n-1]
		block = block[:n-1]
		if n >= 3 {
			tx.City = block[len(block)-1]
			block = block[:len(block)-1]
		}
	}
	tx.Description = strings.Join(block, " ")
}

// IsPriorBalanceCollection reports whether tx is the collection of the
// previous statement's balance rather than a new transaction.
func IsPriorBalanceCollection(tx model.Transaction) bool {
	return strings.Contains(strings.ToUpper(tx.Description), priorBalanceCollection)
}

// AttachExchangeRate returns a copy of txs with the exchange rate set on the
// transaction at idx. An out-of-range idx or an already annotated
// transaction leaves txs unchanged.
func AttachExchangeRate(txs []model.Transaction, idx int, rate decimal.Decimal) []model.Transaction {
	if idx < 0 || idx >= len(txs) || txs[idx].ExchangeRate.Valid {
		return txs
	}
	out := make([]model.Transaction, len(txs))
	copy(out, txs)
	out[idx].ExchangeRate = decimal.NewNullDecimal(rate)
	return out
}
