package ics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/icsimport/internal/model"
)

func TestCrossValidate(t *testing.T) {
	txs := []model.Transaction{
		{AmountEUR: dec("56.52"), Direction: model.DirectionDebit},
		{AmountEUR: dec("36.00"), Direction: model.DirectionDebit},
		{AmountEUR: dec("28.90"), Direction: model.DirectionDebit},
		{AmountEUR: dec("25.00"), Direction: model.DirectionCredit},
		{AmountEUR: dec("571.10"), Direction: model.DirectionDebit},
	}

	tests := []struct {
		name     string
		total    string
		warnings int
	}{
		{"exact", "692.52", 0},
		{"within tolerance", "692.50", 0},
		{"at tolerance", "692.54", 0},
		{"over tolerance", "692.62", 1},
		{"under stated", "692.42", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := model.StatementHeader{TotalNewExpenses: dec(tt.total)}
			assert.Len(t, CrossValidate(h, txs, DefaultTotalTolerance), tt.warnings)
		})
	}
}

func TestCrossValidate_WarningNamesBothFigures(t *testing.T) {
	txs := []model.Transaction{{AmountEUR: dec("100.00"), Direction: model.DirectionDebit}}
	h := model.StatementHeader{TotalNewExpenses: dec("100.10")}

	warnings := CrossValidate(h, txs, DefaultTotalTolerance)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "100.00")
	assert.Contains(t, warnings[0], "100.10")
	assert.Contains(t, warnings[0], "0.10")
}

func TestCrossValidate_NoTransactions(t *testing.T) {
	assert.Empty(t, CrossValidate(model.StatementHeader{TotalNewExpenses: decimal.Zero}, nil, DefaultTotalTolerance))
	assert.Len(t, CrossValidate(model.StatementHeader{TotalNewExpenses: dec("5")}, nil, DefaultTotalTolerance), 1)
}

func TestCrossValidate_CustomTolerance(t *testing.T) {
	txs := []model.Transaction{{AmountEUR: dec("10.00"), Direction: model.DirectionDebit}}
	h := model.StatementHeader{TotalNewExpenses: dec("10.50")}

	assert.Empty(t, CrossValidate(h, txs, dec("1")))
	assert.Len(t, CrossValidate(h, txs, decimal.Zero), 1)
}
