package id

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const customerNumberLen = 11

// FormatStatementID returns a statement ID like "78179360017_2026-01".
func FormatStatementID(customerNumber string, year int, month time.Month) string {
	return fmt.Sprintf("%s_%04d-%02d", customerNumber, year, int(month))
}

// ParseStatementID parses "78179360017_2026-01" into customer number, year and month.
func ParseStatementID(id string) (customer string, year int, month time.Month, err error) {
	customer, period, ok := strings.Cut(id, "_")
	if !ok {
		return "", 0, 0, fmt.Errorf("invalid statement ID format: %q", id)
	}
	if !IsCustomerNumber(customer) {
		return "", 0, 0, fmt.Errorf("invalid customer number in statement ID %q", id)
	}

	yearStr, monthStr, ok := strings.Cut(period, "-")
	if !ok || len(yearStr) != 4 || len(monthStr) != 2 {
		return "", 0, 0, fmt.Errorf("invalid period in statement ID %q", id)
	}

	year, err = strconv.Atoi(yearStr)
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid year in statement ID %q: %w", id, err)
	}

	m, err := strconv.Atoi(monthStr)
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid month in statement ID %q: %w", id, err)
	}
	if m < 1 || m > 12 {
		return "", 0, 0, fmt.Errorf("month %d out of range in statement ID %q", m, id)
	}

	return customer, year, time.Month(m), nil
}

// IsCustomerNumber reports whether s is an 11-digit ICS customer number.
func IsCustomerNumber(s string) bool {
	if len(s) != customerNumberLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
