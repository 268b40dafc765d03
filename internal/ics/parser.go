package ics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/icsimport/internal/id"
	"github.com/cleared-dev/icsimport/internal/model"
)

// PageSource yields the positioned text of a rendered document, one page at a time.
type PageSource interface {
	NumPages() int
	PageItems(ctx context.Context, page int) ([]model.TextItem, error)
}

// Parser reconstructs ICS statement data from positioned text.
type Parser struct {
	logger         *zap.Logger
	rowTolerance   float64
	totalTolerance decimal.Decimal
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for row-level diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRowTolerance sets the Y proximity used to group fragments into rows.
func WithRowTolerance(t float64) Option {
	return func(p *Parser) {
		if t > 0 {
			p.rowTolerance = t
		}
	}
}

// WithTotalTolerance sets the allowed difference between parsed and stated totals.
func WithTotalTolerance(t decimal.Decimal) Option {
	return func(p *Parser) {
		if !t.IsNegative() {
			p.totalTolerance = t
		}
	}
}

// NewParser creates a Parser with default tolerances and a no-op logger.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		logger:         zap.NewNop(),
		rowTolerance:   DefaultRowTolerance,
		totalTolerance: DefaultTotalTolerance,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Parse reads every page of src in order and parses the statement.
// Pages are read sequentially: row reconstruction depends on page order.
func (p *Parser) Parse(ctx context.Context, src PageSource) (*model.ParseResult, error) {
	n := src.NumPages()
	var items []model.TextItem
	for page := 1; page <= n; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pageItems, err := src.PageItems(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("reading page %d: %w", page, err)
		}
		items = append(items, pageItems...)
	}
	p.logger.Debug("extracted text items", zap.Int("pages", n), zap.Int("items", len(items)))
	return p.ParseItems(items)
}

// ParseItems parses a statement from already extracted text items.
func (p *Parser) ParseItems(items []model.TextItem) (*model.ParseResult, error) {
	rows := GroupRows(items, p.rowTolerance)

	header, err := ExtractHeader(rows)
	if err != nil {
		return nil, fmt.Errorf("extracting header: %w", err)
	}
	year, month := header.StatementDate.Year(), header.StatementDate.Month()

	var txs []model.Transaction
	lastIdx := -1
	for i, outcome := range ClassifyRows(rows) {
		row := rows[i]
		switch o := outcome.(type) {
		case Skip:
			p.logger.Debug("skipping row",
				zap.Int("page", row.Page), zap.String("reason", string(o.Reason)), zap.String("text", row.Text()))
		case HeaderRow:
			p.logger.Debug("header row", zap.Int("page", row.Page), zap.String("field", o.Field))
		case ExchangeRateAnnotation:
			if lastIdx < 0 {
				p.logger.Debug("dropping exchange rate without transaction",
					zap.Int("page", row.Page), zap.String("currency", o.Currency))
				continue
			}
			if txs[lastIdx].ForeignCurrency != "" && txs[lastIdx].ForeignCurrency != o.Currency {
				p.logger.Warn("exchange rate currency differs from transaction",
					zap.String("rate_currency", o.Currency), zap.String("tx_currency", txs[lastIdx].ForeignCurrency))
			}
			txs = AttachExchangeRate(txs, lastIdx, o.Rate)
		case TransactionCandidate:
			tx, ok, err := ParseTransactionRow(o.Row, year, month)
			if err != nil {
				return nil, fmt.Errorf("page %d row %q: %w", row.Page, row.Text(), err)
			}
			if !ok {
				p.logger.Debug("not a transaction row", zap.Int("page", row.Page), zap.String("text", row.Text()))
				continue
			}
			if IsPriorBalanceCollection(tx) {
				p.logger.Debug("excluding prior balance collection", zap.String("amount", tx.AmountEUR.StringFixed(2)))
				continue
			}
			txs = append(txs, tx)
			lastIdx = len(txs) - 1
		default:
			return nil, fmt.Errorf("unhandled row outcome %T", outcome)
		}
	}

	result := &model.ParseResult{
		Header:       header,
		Transactions: txs,
		Warnings:     CrossValidate(header, txs, p.totalTolerance),
		StatementID:  id.FormatStatementID(header.CustomerNumber, year, month),
	}

	p.logger.Info("parsed statement",
		zap.String("statement_id", result.StatementID),
		zap.Int("transactions", len(txs)),
		zap.Int("warnings", len(result.Warnings)))
	return result, nil
}
