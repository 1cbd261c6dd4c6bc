package ratios

import (
	"github.com/wonny/fundalyze/internal/contracts"
)

// fault reports why a formula could not produce a value
type fault struct {
	status contracts.RatioStatus
	field  string
}

func divisionByZero(field string) *fault {
	return &fault{status: contracts.StatusDivisionByZero, field: field}
}

// formula is one entry in the static formula table. inputs are field names
// in declared argument order; compute receives the resolved values in the
// same order and has already been guaranteed that none of them is absent.
type formula struct {
	name     string
	category contracts.Category
	inputs   []string
	compute  func(args []float64) (float64, *fault)
}

// fieldAccessors maps the wire-level field names used in formula
// declarations to FinancialRecord fields. free_cash_flow resolves through
// DerivedFreeCashFlow so the reported figure wins over the derivation.
var fieldAccessors = map[string]func(*contracts.FinancialRecord) *float64{
	"total_revenue":              func(r *contracts.FinancialRecord) *float64 { return r.TotalRevenue },
	"cost_of_revenue":            func(r *contracts.FinancialRecord) *float64 { return r.CostOfRevenue },
	"operating_income":           func(r *contracts.FinancialRecord) *float64 { return r.OperatingIncome },
	"ebitda":                     func(r *contracts.FinancialRecord) *float64 { return r.EBITDA },
	"interest_expense":           func(r *contracts.FinancialRecord) *float64 { return r.InterestExpense },
	"net_income":                 func(r *contracts.FinancialRecord) *float64 { return r.NetIncome },
	"diluted_shares_outstanding": func(r *contracts.FinancialRecord) *float64 { return r.DilutedShares },
	"total_assets":               func(r *contracts.FinancialRecord) *float64 { return r.TotalAssets },
	"total_current_assets":       func(r *contracts.FinancialRecord) *float64 { return r.TotalCurrentAssets },
	"cash_and_equivalents":       func(r *contracts.FinancialRecord) *float64 { return r.CashAndEquivalents },
	"accounts_receivable":        func(r *contracts.FinancialRecord) *float64 { return r.AccountsReceivable },
	"inventory":                  func(r *contracts.FinancialRecord) *float64 { return r.Inventory },
	"total_current_liabilities":  func(r *contracts.FinancialRecord) *float64 { return r.TotalCurrentLiabilities },
	"total_debt":                 func(r *contracts.FinancialRecord) *float64 { return r.TotalDebt },
	"total_equity":               func(r *contracts.FinancialRecord) *float64 { return r.TotalEquity },
	"operating_cash_flow":        func(r *contracts.FinancialRecord) *float64 { return r.OperatingCashFlow },
	"capital_expenditures":       func(r *contracts.FinancialRecord) *float64 { return r.CapitalExpenditures },
	"free_cash_flow":             func(r *contracts.FinancialRecord) *float64 { return r.DerivedFreeCashFlow() },
	"share_price":                func(r *contracts.FinancialRecord) *float64 { return r.SharePrice },
	"market_cap":                 func(r *contracts.FinancialRecord) *float64 { return r.MarketCap },
	"enterprise_value":           func(r *contracts.FinancialRecord) *float64 { return r.EnterpriseValue },
}

// simpleDivision builds a compute function for numerator/denominator
// formulas, naming denomField when the denominator is exactly zero.
func simpleDivision(denomField string) func(args []float64) (float64, *fault) {
	return func(args []float64) (float64, *fault) {
		if args[1] == 0 {
			return 0, divisionByZero(denomField)
		}
		return args[0] / args[1], nil
	}
}

// formulaTable is the closed set of ratios this engine computes. Order
// within the table is the canonical iteration order of ComputeAll.
var formulaTable = []formula{
	// Liquidity
	{
		name:     "current_ratio",
		category: contracts.CategoryLiquidity,
		inputs:   []string{"total_current_assets", "total_current_liabilities"},
		compute:  simpleDivision("total_current_liabilities"),
	},
	{
		name:     "quick_ratio",
		category: contracts.CategoryLiquidity,
		inputs:   []string{"total_current_assets", "inventory", "total_current_liabilities"},
		compute: func(args []float64) (float64, *fault) {
			if args[2] == 0 {
				return 0, divisionByZero("total_current_liabilities")
			}
			return (args[0] - args[1]) / args[2], nil
		},
	},
	{
		name:     "cash_ratio",
		category: contracts.CategoryLiquidity,
		inputs:   []string{"cash_and_equivalents", "total_current_liabilities"},
		compute:  simpleDivision("total_current_liabilities"),
	},

	// Profitability
	{
		name:     "gross_margin",
		category: contracts.CategoryProfitability,
		inputs:   []string{"total_revenue", "cost_of_revenue"},
		compute: func(args []float64) (float64, *fault) {
			if args[0] == 0 {
				return 0, divisionByZero("total_revenue")
			}
			return (args[0] - args[1]) / args[0], nil
		},
	},
	{
		name:     "operating_margin",
		category: contracts.CategoryProfitability,
		inputs:   []string{"operating_income", "total_revenue"},
		compute:  simpleDivision("total_revenue"),
	},
	{
		name:     "net_margin",
		category: contracts.CategoryProfitability,
		inputs:   []string{"net_income", "total_revenue"},
		compute:  simpleDivision("total_revenue"),
	},
	{
		name:     "roa",
		category: contracts.CategoryProfitability,
		inputs:   []string{"net_income", "total_assets"},
		compute:  simpleDivision("total_assets"),
	},
	{
		name:     "roe",
		category: contracts.CategoryProfitability,
		inputs:   []string{"net_income", "total_equity"},
		compute:  simpleDivision("total_equity"),
	},

	// Solvency
	{
		name:     "debt_to_equity",
		category: contracts.CategorySolvency,
		inputs:   []string{"total_debt", "total_equity"},
		compute:  simpleDivision("total_equity"),
	},
	{
		name:     "debt_to_assets",
		category: contracts.CategorySolvency,
		inputs:   []string{"total_debt", "total_assets"},
		compute:  simpleDivision("total_assets"),
	},
	{
		// Operating income stands in for EBIT
		name:     "interest_coverage",
		category: contracts.CategorySolvency,
		inputs:   []string{"operating_income", "interest_expense"},
		compute:  simpleDivision("interest_expense"),
	},

	// Efficiency
	{
		name:     "asset_turnover",
		category: contracts.CategoryEfficiency,
		inputs:   []string{"total_revenue", "total_assets"},
		compute:  simpleDivision("total_assets"),
	},
	{
		name:     "inventory_turnover",
		category: contracts.CategoryEfficiency,
		inputs:   []string{"cost_of_revenue", "inventory"},
		compute:  simpleDivision("inventory"),
	},
	{
		name:     "receivables_turnover",
		category: contracts.CategoryEfficiency,
		inputs:   []string{"total_revenue", "accounts_receivable"},
		compute:  simpleDivision("accounts_receivable"),
	},

	// Valuation
	{
		name:     "price_to_earnings",
		category: contracts.CategoryValuation,
		inputs:   []string{"share_price", "net_income", "diluted_shares_outstanding"},
		compute: func(args []float64) (float64, *fault) {
			if args[2] == 0 {
				return 0, divisionByZero("diluted_shares_outstanding")
			}
			eps := args[1] / args[2]
			if eps == 0 {
				return 0, divisionByZero("net_income")
			}
			return args[0] / eps, nil
		},
	},
	{
		name:     "price_to_book",
		category: contracts.CategoryValuation,
		inputs:   []string{"share_price", "total_equity", "diluted_shares_outstanding"},
		compute: func(args []float64) (float64, *fault) {
			if args[2] == 0 {
				return 0, divisionByZero("diluted_shares_outstanding")
			}
			bvps := args[1] / args[2]
			if bvps == 0 {
				return 0, divisionByZero("total_equity")
			}
			return args[0] / bvps, nil
		},
	},
	{
		name:     "ev_to_ebitda",
		category: contracts.CategoryValuation,
		inputs:   []string{"enterprise_value", "ebitda"},
		compute:  simpleDivision("ebitda"),
	},

	// Cash flow
	{
		name:     "fcf",
		category: contracts.CategoryCashFlow,
		inputs:   []string{"operating_cash_flow", "capital_expenditures"},
		compute: func(args []float64) (float64, *fault) {
			return args[0] - args[1], nil
		},
	},
	{
		name:     "fcf_yield",
		category: contracts.CategoryCashFlow,
		inputs:   []string{"free_cash_flow", "market_cap"},
		compute:  simpleDivision("market_cap"),
	},
	{
		name:     "ocf_to_net_income",
		category: contracts.CategoryCashFlow,
		inputs:   []string{"operating_cash_flow", "net_income"},
		compute:  simpleDivision("net_income"),
	},

	// Per share
	{
		name:     "eps",
		category: contracts.CategoryPerShare,
		inputs:   []string{"net_income", "diluted_shares_outstanding"},
		compute:  simpleDivision("diluted_shares_outstanding"),
	},
	{
		name:     "book_value_per_share",
		category: contracts.CategoryPerShare,
		inputs:   []string{"total_equity", "diluted_shares_outstanding"},
		compute:  simpleDivision("diluted_shares_outstanding"),
	},
}

// formulaIndex resolves ratio names to table entries
var formulaIndex = buildFormulaIndex()

func buildFormulaIndex() map[string]*formula {
	idx := make(map[string]*formula, len(formulaTable))
	for i := range formulaTable {
		idx[formulaTable[i].name] = &formulaTable[i]
	}
	return idx
}

// Names returns every ratio name in the formula table, in table order
func Names() []string {
	names := make([]string, 0, len(formulaTable))
	for i := range formulaTable {
		names = append(names, formulaTable[i].name)
	}
	return names
}

// IsKnown reports whether name is in the formula table
func IsKnown(name string) bool {
	_, exists := formulaIndex[name]
	return exists
}

// NamesByCategory returns the ratio names defined per category, in table
// order. Scoring uses the per-category sizes for coverage reporting.
func NamesByCategory() map[contracts.Category][]string {
	byCat := make(map[contracts.Category][]string)
	for i := range formulaTable {
		f := &formulaTable[i]
		byCat[f.category] = append(byCat[f.category], f.name)
	}
	return byCat
}
