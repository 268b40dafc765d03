package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseAbbreviatedDate(t *testing.T) {
	tests := []struct {
		token string
		year  int
		month time.Month
		want  time.Time
	}{
		{"06 jan.", 2026, time.January, date(2026, 1, 6)},
		{"30 dec.", 2026, time.January, date(2025, 12, 30)},
		{"15 mrt", 2026, time.March, date(2026, 3, 15)},
		{"1 MEI", 2026, time.June, date(2026, 5, 1)},
		{"28 feb.", 2026, time.February, date(2026, 2, 28)},
		{"31 okt.", 2026, time.November, date(2026, 10, 31)},
		{" 02 jan. ", 2026, time.February, date(2026, 1, 2)},
	}
	for _, tt := range tests {
		got, err := ParseAbbreviatedDate(tt.token, tt.year, tt.month)
		require.NoError(t, err, "ParseAbbreviatedDate(%q)", tt.token)
		assert.Equal(t, tt.want, got, "ParseAbbreviatedDate(%q)", tt.token)
	}
}

func TestParseAbbreviatedDate_YearInference(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		for tok, tokMonth := range abbreviatedMonths {
			got, err := ParseAbbreviatedDate("10 "+tok, 2026, m)
			require.NoError(t, err)
			if tokMonth > m {
				assert.Equal(t, 2025, got.Year(), "%s in statement month %s", tok, m)
			} else {
				assert.Equal(t, 2026, got.Year(), "%s in statement month %s", tok, m)
			}
		}
	}
}

func TestParseAbbreviatedDate_Errors(t *testing.T) {
	_, err := ParseAbbreviatedDate("15 xyz.", 2026, time.January)
	assert.ErrorIs(t, err, ErrUnknownMonth)

	_, err = ParseAbbreviatedDate("invalid", 2026, time.January)
	assert.ErrorIs(t, err, ErrInvalidDateFormat)

	_, err = ParseAbbreviatedDate("06 januari", 2026, time.January)
	assert.ErrorIs(t, err, ErrInvalidDateFormat)

	_, err = ParseAbbreviatedDate("31 feb.", 2026, time.March)
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
}

func TestParseFullDate(t *testing.T) {
	tests := []struct {
		token string
		want  time.Time
	}{
		{"19 januari 2026", date(2026, 1, 19)},
		{"2 februari 2026", date(2026, 2, 2)},
		{"1 Maart 2025", date(2025, 3, 1)},
		{"31 december 2025", date(2025, 12, 31)},
	}
	for _, tt := range tests {
		got, err := ParseFullDate(tt.token)
		require.NoError(t, err, "ParseFullDate(%q)", tt.token)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseFullDate_Errors(t *testing.T) {
	_, err := ParseFullDate("19 jan 2026")
	assert.ErrorIs(t, err, ErrUnknownMonth)

	_, err = ParseFullDate("19 march 2026")
	assert.ErrorIs(t, err, ErrUnknownMonth)

	_, err = ParseFullDate("januari 2026")
	assert.ErrorIs(t, err, ErrInvalidDateFormat)

	_, err = ParseFullDate("30 februari 2026")
	assert.ErrorIs(t, err, ErrInvalidDateFormat)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"36,00", "36.00"},
		{" 13,99 ", "13.99"},
		{"28.90", "28.90"},
		{"571,10", "571.10"},
		{"0,01", "0.01"},
		{"1 234,56", "1234.56"},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.token)
		require.NoError(t, err, "ParseAmount(%q)", tt.token)
		assert.Equal(t, tt.want, got.StringFixed(2), "ParseAmount(%q)", tt.token)
	}
}

func TestParseAmount_Errors(t *testing.T) {
	for _, token := range []string{"abc", "", "12,34,56", "€", "1.234,56", "1e3", "+5", "5,", ",5", "1,5e2"} {
		_, err := ParseAmount(token)
		assert.ErrorIs(t, err, ErrInvalidAmount, "ParseAmount(%q)", token)
	}
}

func TestParseRate(t *testing.T) {
	rate, err := parseRate("1,16644")
	require.NoError(t, err)
	assert.Equal(t, "1.16644", rate.String())

	_, err = parseRate("0,00")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
