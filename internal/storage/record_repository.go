package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/fundalyze/internal/contracts"
	"github.com/wonny/fundalyze/pkg/database"
	"github.com/wonny/fundalyze/pkg/logger"
)

// recordColumns lists the numeric columns in the order the scan helpers
// expect. Keep in sync with schema.sql and scanRecord.
const recordColumns = `
	total_revenue, cost_of_revenue, gross_profit, operating_expenses,
	operating_income, ebitda, interest_expense, income_before_tax,
	tax_expense, net_income, diluted_shares_outstanding, basic_shares_outstanding,
	total_assets, total_current_assets, cash_and_equivalents, short_term_investments,
	accounts_receivable, inventory, total_current_liabilities, accounts_payable,
	short_term_debt, total_liabilities, long_term_debt, total_debt,
	total_equity, retained_earnings,
	operating_cash_flow, capital_expenditures, free_cash_flow,
	financing_cash_flow, investing_cash_flow, dividends_paid,
	share_price, market_cap, enterprise_value`

// RecordRepository stores and retrieves normalized financial records.
// NULL columns round-trip as nil pointers, never as zero.
type RecordRepository struct {
	db     *database.DB
	logger *logger.Logger
}

func NewRecordRepository(db *database.DB, log *logger.Logger) *RecordRepository {
	return &RecordRepository{db: db, logger: log}
}

func numericFields(r *contracts.FinancialRecord) []any {
	return []any{
		r.TotalRevenue, r.CostOfRevenue, r.GrossProfit, r.OperatingExpenses,
		r.OperatingIncome, r.EBITDA, r.InterestExpense, r.IncomeBeforeTax,
		r.TaxExpense, r.NetIncome, r.DilutedShares, r.BasicShares,
		r.TotalAssets, r.TotalCurrentAssets, r.CashAndEquivalents, r.ShortTermInvestments,
		r.AccountsReceivable, r.Inventory, r.TotalCurrentLiabilities, r.AccountsPayable,
		r.ShortTermDebt, r.TotalLiabilities, r.LongTermDebt, r.TotalDebt,
		r.TotalEquity, r.RetainedEarnings,
		r.OperatingCashFlow, r.CapitalExpenditures, r.FreeCashFlow,
		r.FinancingCashFlow, r.InvestingCashFlow, r.DividendsPaid,
		r.SharePrice, r.MarketCap, r.EnterpriseValue,
	}
}

func numericDests(r *contracts.FinancialRecord) []any {
	return []any{
		&r.TotalRevenue, &r.CostOfRevenue, &r.GrossProfit, &r.OperatingExpenses,
		&r.OperatingIncome, &r.EBITDA, &r.InterestExpense, &r.IncomeBeforeTax,
		&r.TaxExpense, &r.NetIncome, &r.DilutedShares, &r.BasicShares,
		&r.TotalAssets, &r.TotalCurrentAssets, &r.CashAndEquivalents, &r.ShortTermInvestments,
		&r.AccountsReceivable, &r.Inventory, &r.TotalCurrentLiabilities, &r.AccountsPayable,
		&r.ShortTermDebt, &r.TotalLiabilities, &r.LongTermDebt, &r.TotalDebt,
		&r.TotalEquity, &r.RetainedEarnings,
		&r.OperatingCashFlow, &r.CapitalExpenditures, &r.FreeCashFlow,
		&r.FinancingCashFlow, &r.InvestingCashFlow, &r.DividendsPaid,
		&r.SharePrice, &r.MarketCap, &r.EnterpriseValue,
	}
}

func recordColumnNames() []string {
	return strings.Fields(strings.NewReplacer(",", "", "\n", " ", "\t", " ").Replace(recordColumns))
}

// Save upserts a record keyed by entity, period end and period type
func (r *RecordRepository) Save(ctx context.Context, record *contracts.FinancialRecord) error {
	columns := recordColumnNames()

	var placeholders strings.Builder
	args := []any{record.Entity, record.PeriodEnd, string(record.PeriodType)}
	for i, v := range numericFields(record) {
		fmt.Fprintf(&placeholders, ", $%d", i+4)
		args = append(args, v)
	}

	setClauses := make([]string, len(columns))
	for i, col := range columns {
		setClauses[i] = fmt.Sprintf("%s = EXCLUDED.%s", col, col)
	}

	query := fmt.Sprintf(`
		INSERT INTO financial_records (entity, period_end, period_type, %s)
		VALUES ($1, $2, $3%s)
		ON CONFLICT (entity, period_end, period_type) DO UPDATE SET
			%s, updated_at = now()`,
		recordColumns, placeholders.String(), strings.Join(setClauses, ", "))

	if _, err := r.db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("save record %s/%s: %w", record.Entity, record.PeriodEnd.Format("2006-01-02"), err)
	}
	return nil
}

// Get returns one record, or ErrNotFound
func (r *RecordRepository) Get(ctx context.Context, entity string, periodEnd time.Time, periodType contracts.PeriodType) (*contracts.FinancialRecord, error) {
	query := fmt.Sprintf(`
		SELECT entity, period_end, period_type, %s
		FROM financial_records
		WHERE entity = $1 AND period_end = $2 AND period_type = $3`,
		recordColumns)

	record, err := scanRecord(r.db.Pool.QueryRow(ctx, query, entity, periodEnd, string(periodType)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", entity, err)
	}
	return record, nil
}

// ListByPeriod returns every record for one reporting period, ordered by
// entity for stable batch runs.
func (r *RecordRepository) ListByPeriod(ctx context.Context, periodEnd time.Time, periodType contracts.PeriodType) ([]*contracts.FinancialRecord, error) {
	query := fmt.Sprintf(`
		SELECT entity, period_end, period_type, %s
		FROM financial_records
		WHERE period_end = $1 AND period_type = $2
		ORDER BY entity`,
		recordColumns)

	rows, err := r.db.Pool.Query(ctx, query, periodEnd, string(periodType))
	if err != nil {
		return nil, fmt.Errorf("list records for %s: %w", periodEnd.Format("2006-01-02"), err)
	}
	defer rows.Close()

	var records []*contracts.FinancialRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"period":  periodEnd.Format("2006-01-02"),
		"type":    string(periodType),
		"records": len(records),
	}).Debug("records loaded")
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*contracts.FinancialRecord, error) {
	var record contracts.FinancialRecord
	var periodType string

	dests := append([]any{&record.Entity, &record.PeriodEnd, &periodType}, numericDests(&record)...)
	if err := row.Scan(dests...); err != nil {
		return nil, err
	}
	record.PeriodType = contracts.PeriodType(periodType)
	return &record, nil
}
