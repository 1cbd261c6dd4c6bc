package ratios

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/wonny/fundalyze/internal/contracts"
	"github.com/wonny/fundalyze/pkg/logger"
)

const epsilon = 1e-9

func testEngine() *Engine {
	return NewEngine(logger.NewNop())
}

func fullRecord() *contracts.FinancialRecord {
	return &contracts.FinancialRecord{
		Entity:     "ACME",
		PeriodEnd:  time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		PeriodType: contracts.PeriodAnnual,

		TotalRevenue:    contracts.Float(1000),
		CostOfRevenue:   contracts.Float(600),
		OperatingIncome: contracts.Float(250),
		EBITDA:          contracts.Float(300),
		InterestExpense: contracts.Float(25),
		NetIncome:       contracts.Float(180),
		DilutedShares:   contracts.Float(90),

		TotalAssets:             contracts.Float(2000),
		TotalCurrentAssets:      contracts.Float(800),
		CashAndEquivalents:      contracts.Float(300),
		AccountsReceivable:      contracts.Float(200),
		Inventory:               contracts.Float(150),
		TotalCurrentLiabilities: contracts.Float(400),
		TotalLiabilities:        contracts.Float(1200),
		TotalDebt:               contracts.Float(700),
		TotalEquity:             contracts.Float(800),

		OperatingCashFlow:   contracts.Float(260),
		CapitalExpenditures: contracts.Float(80),

		SharePrice:      contracts.Float(45),
		MarketCap:       contracts.Float(4050),
		EnterpriseValue: contracts.Float(4450),
	}
}

func TestComputeRatio_AllFormulasAgainstHandComputedValues(t *testing.T) {
	e := testEngine()
	rec := fullRecord()

	want := map[string]float64{
		"current_ratio":        800.0 / 400.0,
		"quick_ratio":          (800.0 - 150.0) / 400.0,
		"cash_ratio":           300.0 / 400.0,
		"gross_margin":         (1000.0 - 600.0) / 1000.0,
		"operating_margin":     250.0 / 1000.0,
		"net_margin":           180.0 / 1000.0,
		"roa":                  180.0 / 2000.0,
		"roe":                  180.0 / 800.0,
		"debt_to_equity":       700.0 / 800.0,
		"debt_to_assets":       700.0 / 2000.0,
		"interest_coverage":    250.0 / 25.0,
		"asset_turnover":       1000.0 / 2000.0,
		"inventory_turnover":   600.0 / 150.0,
		"receivables_turnover": 1000.0 / 200.0,
		"price_to_earnings":    45.0 / (180.0 / 90.0),
		"price_to_book":        45.0 / (800.0 / 90.0),
		"ev_to_ebitda":         4450.0 / 300.0,
		"fcf":                  260.0 - 80.0,
		"fcf_yield":            (260.0 - 80.0) / 4050.0,
		"ocf_to_net_income":    260.0 / 180.0,
		"eps":                  180.0 / 90.0,
		"book_value_per_share": 800.0 / 90.0,
	}

	for name, expected := range want {
		rv, err := e.ComputeRatio(name, rec)
		if err != nil {
			t.Fatalf("ComputeRatio(%s) error: %v", name, err)
		}
		if rv.Status != contracts.StatusOK {
			t.Errorf("%s: status = %s (field %s), want ok", name, rv.Status, rv.Field)
			continue
		}
		if math.Abs(*rv.Value-expected) > epsilon {
			t.Errorf("%s = %v, want %v", name, *rv.Value, expected)
		}
	}

	if len(want) != len(Names()) {
		t.Errorf("test covers %d ratios, formula table has %d", len(want), len(Names()))
	}
}

func TestComputeRatio_MissingInputNamesFirstMissingField(t *testing.T) {
	e := testEngine()

	tests := []struct {
		ratio     string
		record    *contracts.FinancialRecord
		wantField string
	}{
		{
			// record missing inventory entirely
			ratio: "quick_ratio",
			record: &contracts.FinancialRecord{
				TotalCurrentAssets:      contracts.Float(150),
				TotalCurrentLiabilities: contracts.Float(100),
			},
			wantField: "inventory",
		},
		{
			ratio:     "current_ratio",
			record:    &contracts.FinancialRecord{TotalCurrentLiabilities: contracts.Float(100)},
			wantField: "total_current_assets",
		},
		{
			// declared order decides: both missing, first named
			ratio:     "roe",
			record:    &contracts.FinancialRecord{},
			wantField: "net_income",
		},
		{
			// derived fcf unavailable when capex missing
			ratio:     "fcf_yield",
			record:    &contracts.FinancialRecord{OperatingCashFlow: contracts.Float(200), MarketCap: contracts.Float(1000)},
			wantField: "free_cash_flow",
		},
	}

	for _, tt := range tests {
		rv, err := e.ComputeRatio(tt.ratio, tt.record)
		if err != nil {
			t.Fatalf("ComputeRatio(%s) error: %v", tt.ratio, err)
		}
		if rv.Status != contracts.StatusMissingInput {
			t.Errorf("%s: status = %s, want missing_input", tt.ratio, rv.Status)
		}
		if rv.Field != tt.wantField {
			t.Errorf("%s: field = %s, want %s", tt.ratio, rv.Field, tt.wantField)
		}
		if rv.Value != nil {
			t.Errorf("%s: value must be nil on failure, got %v", tt.ratio, *rv.Value)
		}
	}
}

func TestComputeRatio_DivisionByZero(t *testing.T) {
	e := testEngine()

	tests := []struct {
		name      string
		ratio     string
		record    *contracts.FinancialRecord
		wantField string
	}{
		{
			name:  "zero current liabilities",
			ratio: "current_ratio",
			record: &contracts.FinancialRecord{
				TotalCurrentAssets:      contracts.Float(150),
				TotalCurrentLiabilities: contracts.Float(0),
			},
			wantField: "total_current_liabilities",
		},
		{
			// zero over zero is still division_by_zero, not NaN
			name:  "zero numerator and denominator",
			ratio: "net_margin",
			record: &contracts.FinancialRecord{
				NetIncome:    contracts.Float(0),
				TotalRevenue: contracts.Float(0),
			},
			wantField: "total_revenue",
		},
		{
			name:  "pe with zero shares names shares",
			ratio: "price_to_earnings",
			record: &contracts.FinancialRecord{
				SharePrice:    contracts.Float(45),
				NetIncome:     contracts.Float(180),
				DilutedShares: contracts.Float(0),
			},
			wantField: "diluted_shares_outstanding",
		},
		{
			name:  "pe with zero earnings names net income",
			ratio: "price_to_earnings",
			record: &contracts.FinancialRecord{
				SharePrice:    contracts.Float(45),
				NetIncome:     contracts.Float(0),
				DilutedShares: contracts.Float(90),
			},
			wantField: "net_income",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rv, err := e.ComputeRatio(tt.ratio, tt.record)
			if err != nil {
				t.Fatalf("ComputeRatio error: %v", err)
			}
			if rv.Status != contracts.StatusDivisionByZero {
				t.Errorf("status = %s, want division_by_zero", rv.Status)
			}
			if rv.Field != tt.wantField {
				t.Errorf("field = %s, want %s", rv.Field, tt.wantField)
			}
			if rv.Value != nil {
				t.Errorf("value must be nil, got %v", *rv.Value)
			}
		})
	}
}

func TestComputeRatio_DistressedCompanyPassesThrough(t *testing.T) {
	// Negative over negative is positive and stays ok.
	// Interpreting that result belongs downstream, not to the engine.
	e := testEngine()
	rec := &contracts.FinancialRecord{
		NetIncome:   contracts.Float(-50),
		TotalEquity: contracts.Float(-10),
	}

	rv, err := e.ComputeRatio("roe", rec)
	if err != nil {
		t.Fatalf("ComputeRatio error: %v", err)
	}
	if rv.Status != contracts.StatusOK {
		t.Fatalf("status = %s, want ok", rv.Status)
	}
	if math.Abs(*rv.Value-5.0) > epsilon {
		t.Errorf("roe = %v, want 5.0", *rv.Value)
	}
}

func TestComputeRatio_UnknownRatio(t *testing.T) {
	e := testEngine()
	_, err := e.ComputeRatio("graham_number", fullRecord())

	var unknownErr UnknownRatioError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected UnknownRatioError, got %v", err)
	}
	if unknownErr.Name != "graham_number" {
		t.Errorf("error names %s, want graham_number", unknownErr.Name)
	}
}

func TestComputeAll_NeverFailsOnSparseRecords(t *testing.T) {
	e := testEngine()

	records := []*contracts.FinancialRecord{
		{},
		{TotalRevenue: contracts.Float(1000)},
		{TotalCurrentLiabilities: contracts.Float(0), TotalCurrentAssets: contracts.Float(150)},
		fullRecord(),
	}

	for i, rec := range records {
		result, err := e.ComputeAll(rec)
		if err != nil {
			t.Fatalf("record %d: ComputeAll error: %v", i, err)
		}
		if result.Count() != len(Names()) {
			t.Errorf("record %d: got %d results, want %d", i, result.Count(), len(Names()))
		}
	}
}

func TestComputeAll_CategoryFilter(t *testing.T) {
	e := testEngine()
	rec := fullRecord()

	result, err := e.ComputeAll(rec, contracts.CategoryLiquidity, contracts.CategoryValuation)
	if err != nil {
		t.Fatalf("ComputeAll error: %v", err)
	}

	if len(result) != 2 {
		t.Errorf("got %d categories, want 2", len(result))
	}
	if len(result[contracts.CategoryLiquidity]) != 3 {
		t.Errorf("liquidity has %d ratios, want 3", len(result[contracts.CategoryLiquidity]))
	}
	if _, exists := result[contracts.CategoryProfitability]; exists {
		t.Error("profitability should have been filtered out")
	}

	_, err = e.ComputeAll(rec, contracts.Category("momentum"))
	var unknownErr UnknownCategoryError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected UnknownCategoryError, got %v", err)
	}
}

func TestComputeAll_Idempotent(t *testing.T) {
	e := testEngine()
	rec := fullRecord()

	first, err := e.ComputeAll(rec)
	if err != nil {
		t.Fatalf("ComputeAll error: %v", err)
	}
	second, err := e.ComputeAll(rec)
	if err != nil {
		t.Fatalf("ComputeAll error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("ComputeAll is not idempotent over an immutable record")
	}
}

func TestComputeRatio_ReportedFCFWinsOverDerived(t *testing.T) {
	e := testEngine()
	rec := &contracts.FinancialRecord{
		FreeCashFlow: contracts.Float(500),
		MarketCap:    contracts.Float(10000),
	}

	rv, err := e.ComputeRatio("fcf_yield", rec)
	if err != nil {
		t.Fatalf("ComputeRatio error: %v", err)
	}
	if rv.Status != contracts.StatusOK {
		t.Fatalf("status = %s (field %s), want ok", rv.Status, rv.Field)
	}
	if math.Abs(*rv.Value-0.05) > epsilon {
		t.Errorf("fcf_yield = %v, want 0.05", *rv.Value)
	}
}
