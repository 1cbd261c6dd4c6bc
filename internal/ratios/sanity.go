package ratios

import (
	"fmt"
	"math"

	"github.com/wonny/fundalyze/internal/contracts"
)

// fcfMismatchTolerance is the relative deviation allowed between a reported
// free cash flow figure and operating cash flow minus capex before the
// record is flagged.
const fcfMismatchTolerance = 0.01

// SanityCheck flags implausible field combinations on a record. It is
// deliberately separate from ratio computation: distressed companies
// legitimately report negative income, equity, or cash flow, and nothing
// here blocks such records from being computed or scored.
func SanityCheck(record *contracts.FinancialRecord) []contracts.Warning {
	var warnings []contracts.Warning

	if record.TotalRevenue != nil && *record.TotalRevenue < 0 {
		warnings = append(warnings, contracts.Warning{
			Code:    "NEGATIVE_REVENUE",
			Message: fmt.Sprintf("total revenue is negative: %.2f", *record.TotalRevenue),
		})
	}

	if record.TotalAssets != nil && *record.TotalAssets < 0 {
		warnings = append(warnings, contracts.Warning{
			Code:    "NEGATIVE_ASSETS",
			Message: fmt.Sprintf("total assets is negative: %.2f", *record.TotalAssets),
		})
	}

	if record.TotalLiabilities != nil && record.TotalAssets != nil &&
		*record.TotalLiabilities > *record.TotalAssets {
		warnings = append(warnings, contracts.Warning{
			Code:    "LIABILITIES_EXCEED_ASSETS",
			Message: fmt.Sprintf("total liabilities %.2f exceed total assets %.2f", *record.TotalLiabilities, *record.TotalAssets),
		})
	}

	if record.TotalCurrentLiabilities != nil && record.TotalLiabilities != nil &&
		*record.TotalCurrentLiabilities > *record.TotalLiabilities {
		warnings = append(warnings, contracts.Warning{
			Code:    "CURRENT_EXCEEDS_TOTAL_LIABILITIES",
			Message: fmt.Sprintf("current liabilities %.2f exceed total liabilities %.2f", *record.TotalCurrentLiabilities, *record.TotalLiabilities),
		})
	}

	if record.DilutedShares != nil && *record.DilutedShares <= 0 {
		warnings = append(warnings, contracts.Warning{
			Code:    "NONPOSITIVE_SHARES",
			Message: fmt.Sprintf("diluted shares outstanding is not positive: %.2f", *record.DilutedShares),
		})
	}

	// Reported FCF should reconcile with OCF - capex when all three exist
	if record.FreeCashFlow != nil && record.OperatingCashFlow != nil && record.CapitalExpenditures != nil {
		derived := *record.OperatingCashFlow - *record.CapitalExpenditures
		reported := *record.FreeCashFlow
		scale := math.Max(math.Abs(derived), math.Abs(reported))
		if scale > 0 && math.Abs(derived-reported)/scale > fcfMismatchTolerance {
			warnings = append(warnings, contracts.Warning{
				Code:    "FCF_MISMATCH",
				Message: fmt.Sprintf("reported free cash flow %.2f deviates from OCF-capex %.2f", reported, derived),
			})
		}
	}

	return warnings
}
