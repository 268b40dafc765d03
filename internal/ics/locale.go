package ics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	abbreviatedDatePattern = regexp.MustCompile(`(?i)^(\d{1,2})\s+([a-z]{3})\.?$`)
	fullDatePattern        = regexp.MustCompile(`(?i)^(\d{1,2})\s+([a-z]+)\s+(\d{4})$`)
	amountPattern          = regexp.MustCompile(`^-?\d+(?:[.,]\d+)?$`)
)

// abbreviatedMonths are the month abbreviations used in transaction rows.
var abbreviatedMonths = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mrt": time.March,
	"apr": time.April,
	"mei": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"okt": time.October,
	"nov": time.November,
	"dec": time.December,
}

// fullMonths are the month names used in prose dates ("19 januari 2026").
var fullMonths = map[string]time.Month{
	"januari":   time.January,
	"februari":  time.February,
	"maart":     time.March,
	"april":     time.April,
	"mei":       time.May,
	"juni":      time.June,
	"juli":      time.July,
	"augustus":  time.August,
	"september": time.September,
	"oktober":   time.October,
	"november":  time.November,
	"december":  time.December,
}

// isAbbreviatedDate reports whether token has the shape of a "06 jan." date.
func isAbbreviatedDate(token string) bool {
	return abbreviatedDatePattern.MatchString(strings.TrimSpace(token))
}

// ParseAbbreviatedDate parses a yearless date such as "06 jan." or "15 mrt".
// A month later than statementMonth belongs to the previous year: a January
// statement listing "30 dec." resolves to December of statementYear-1.
func ParseAbbreviatedDate(token string, statementYear int, statementMonth time.Month) (time.Time, error) {
	m := abbreviatedDatePattern.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, token)
	}

	month, ok := abbreviatedMonths[strings.ToLower(m[2])]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownMonth, m[2])
	}

	year := statementYear
	if month > statementMonth {
		year = statementYear - 1
	}
	return makeDate(token, year, month, m[1])
}

// ParseFullDate parses a date such as "19 januari 2026".
func ParseFullDate(token string) (time.Time, error) {
	m := fullDatePattern.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, token)
	}

	month, ok := fullMonths[strings.ToLower(m[2])]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownMonth, m[2])
	}

	year, err := strconv.Atoi(m[3])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, token)
	}
	return makeDate(token, year, month, m[1])
}

func makeDate(token string, year int, month time.Month, dayStr string) (time.Time, error) {
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, token)
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes "31 feb." into March; reject instead.
	if d.Day() != day || d.Month() != month {
		return time.Time{}, fmt.Errorf("%w: no day %d in %s: %q", ErrInvalidDateFormat, day, month, token)
	}
	return d, nil
}

// ParseAmount parses a decimal-comma amount such as "36,00" or " 13,99 ".
// There is no thousands-separator handling: "28.90" parses as 28.90.
func ParseAmount(token string) (decimal.Decimal, error) {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, token)
	if !amountPattern.MatchString(s) {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, token)
	}
	s = strings.Replace(s, ",", ".", 1)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, token)
	}
	return d, nil
}

// parseRate parses an exchange rate; rates carry more than two decimals.
func parseRate(token string) (decimal.Decimal, error) {
	d, err := ParseAmount(token)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: non-positive rate %q", ErrInvalidAmount, token)
	}
	return d, nil
}
