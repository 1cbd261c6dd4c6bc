package contracts

import "time"

// PeriodType distinguishes annual from quarterly statements
type PeriodType string

const (
	PeriodAnnual    PeriodType = "annual"
	PeriodQuarterly PeriodType = "quarterly"
)

// FinancialRecord is one reporting period for one entity, normalized from
// whatever statement source the caller uses. It is immutable after
// construction: computation and scoring only ever read it.
//
// Every numeric field is a pointer. nil means the statement did not report
// the figure, and nil is never treated as zero downstream: a ratio that
// needs a missing field reports missing_input instead of computing.
type FinancialRecord struct {
	Entity     string     `json:"entity"`
	PeriodEnd  time.Time  `json:"period_end"`
	PeriodType PeriodType `json:"period_type"`

	// Income statement
	TotalRevenue      *float64 `json:"total_revenue,omitempty"`
	CostOfRevenue     *float64 `json:"cost_of_revenue,omitempty"`
	GrossProfit       *float64 `json:"gross_profit,omitempty"`
	OperatingExpenses *float64 `json:"operating_expenses,omitempty"`
	OperatingIncome   *float64 `json:"operating_income,omitempty"`
	EBITDA            *float64 `json:"ebitda,omitempty"`
	InterestExpense   *float64 `json:"interest_expense,omitempty"`
	IncomeBeforeTax   *float64 `json:"income_before_tax,omitempty"`
	TaxExpense        *float64 `json:"tax_expense,omitempty"`
	NetIncome         *float64 `json:"net_income,omitempty"`
	DilutedShares     *float64 `json:"diluted_shares_outstanding,omitempty"`
	BasicShares       *float64 `json:"basic_shares_outstanding,omitempty"`

	// Balance sheet
	TotalAssets             *float64 `json:"total_assets,omitempty"`
	TotalCurrentAssets      *float64 `json:"total_current_assets,omitempty"`
	CashAndEquivalents      *float64 `json:"cash_and_equivalents,omitempty"`
	ShortTermInvestments    *float64 `json:"short_term_investments,omitempty"`
	AccountsReceivable      *float64 `json:"accounts_receivable,omitempty"`
	Inventory               *float64 `json:"inventory,omitempty"`
	TotalCurrentLiabilities *float64 `json:"total_current_liabilities,omitempty"`
	AccountsPayable         *float64 `json:"accounts_payable,omitempty"`
	ShortTermDebt           *float64 `json:"short_term_debt,omitempty"`
	TotalLiabilities        *float64 `json:"total_liabilities,omitempty"`
	LongTermDebt            *float64 `json:"long_term_debt,omitempty"`
	TotalDebt               *float64 `json:"total_debt,omitempty"`
	TotalEquity             *float64 `json:"total_equity,omitempty"`
	RetainedEarnings        *float64 `json:"retained_earnings,omitempty"`

	// Cash flow statement
	OperatingCashFlow   *float64 `json:"operating_cash_flow,omitempty"`
	CapitalExpenditures *float64 `json:"capital_expenditures,omitempty"`
	FreeCashFlow        *float64 `json:"free_cash_flow,omitempty"`
	FinancingCashFlow   *float64 `json:"financing_cash_flow,omitempty"`
	InvestingCashFlow   *float64 `json:"investing_cash_flow,omitempty"`
	DividendsPaid       *float64 `json:"dividends_paid,omitempty"`

	// Market data, supplied externally alongside the statements
	SharePrice      *float64 `json:"share_price,omitempty"`
	MarketCap       *float64 `json:"market_cap,omitempty"`
	EnterpriseValue *float64 `json:"enterprise_value,omitempty"`
}

// Float returns a pointer to v. Convenience for building records literally.
func Float(v float64) *float64 {
	return &v
}

// DerivedFreeCashFlow returns the reported free cash flow when present,
// otherwise operating cash flow minus capex when both are present, otherwise
// nil.
func (r *FinancialRecord) DerivedFreeCashFlow() *float64 {
	if r.FreeCashFlow != nil {
		return r.FreeCashFlow
	}
	if r.OperatingCashFlow != nil && r.CapitalExpenditures != nil {
		fcf := *r.OperatingCashFlow - *r.CapitalExpenditures
		return &fcf
	}
	return nil
}

// HasMarketData reports whether any externally supplied market field is set
func (r *FinancialRecord) HasMarketData() bool {
	return r.SharePrice != nil || r.MarketCap != nil || r.EnterpriseValue != nil
}
