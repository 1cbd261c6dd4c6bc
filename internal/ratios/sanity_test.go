package ratios

import (
	"testing"

	"github.com/wonny/fundalyze/internal/contracts"
)

func warningCodes(warnings []contracts.Warning) map[string]bool {
	codes := make(map[string]bool, len(warnings))
	for _, w := range warnings {
		codes[w.Code] = true
	}
	return codes
}

func TestSanityCheck_CleanRecord(t *testing.T) {
	rec := &contracts.FinancialRecord{
		TotalRevenue:            contracts.Float(1000),
		TotalAssets:             contracts.Float(2000),
		TotalLiabilities:        contracts.Float(1200),
		TotalCurrentLiabilities: contracts.Float(400),
		DilutedShares:           contracts.Float(90),
		OperatingCashFlow:       contracts.Float(260),
		CapitalExpenditures:     contracts.Float(80),
		FreeCashFlow:            contracts.Float(180),
	}

	if warnings := SanityCheck(rec); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestSanityCheck_FlagsImplausibleFields(t *testing.T) {
	rec := &contracts.FinancialRecord{
		TotalRevenue:            contracts.Float(-100),
		TotalAssets:             contracts.Float(500),
		TotalLiabilities:        contracts.Float(800),
		TotalCurrentLiabilities: contracts.Float(900),
		DilutedShares:           contracts.Float(0),
	}

	codes := warningCodes(SanityCheck(rec))
	for _, want := range []string{
		"NEGATIVE_REVENUE",
		"LIABILITIES_EXCEED_ASSETS",
		"CURRENT_EXCEEDS_TOTAL_LIABILITIES",
		"NONPOSITIVE_SHARES",
	} {
		if !codes[want] {
			t.Errorf("missing warning %s, got %v", want, codes)
		}
	}
}

func TestSanityCheck_FCFMismatch(t *testing.T) {
	rec := &contracts.FinancialRecord{
		OperatingCashFlow:   contracts.Float(260),
		CapitalExpenditures: contracts.Float(80),
		FreeCashFlow:        contracts.Float(500), // derived is 180
	}

	codes := warningCodes(SanityCheck(rec))
	if !codes["FCF_MISMATCH"] {
		t.Errorf("expected FCF_MISMATCH, got %v", codes)
	}

	// Within tolerance: no flag
	rec.FreeCashFlow = contracts.Float(180.5)
	if codes := warningCodes(SanityCheck(rec)); codes["FCF_MISMATCH"] {
		t.Error("deviation within tolerance should not be flagged")
	}
}

func TestSanityCheck_DistressedButConsistentRecordPasses(t *testing.T) {
	// Negative income/equity is a real condition, not a data defect
	rec := &contracts.FinancialRecord{
		NetIncome:   contracts.Float(-50),
		TotalEquity: contracts.Float(-10),
	}

	if warnings := SanityCheck(rec); len(warnings) != 0 {
		t.Errorf("distressed record should pass sanity check, got %v", warnings)
	}
}
