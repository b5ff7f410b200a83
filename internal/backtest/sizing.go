package backtest

import "github.com/sawpanic/marketanalysis/internal/workflow"

// PositionSize is the output of ComputePositionSize.
type PositionSize struct {
	Size                  float64
	RiskAmount            float64
	RiskMultiplier        float64
	AccountRiskPercentage float64
	IsValid               bool
}

// ComputePositionSize implements the position-sizing function referenced
// by BacktestEngine.run (spec.md §4.7 step 3 / §8 scenario 3):
// risk_amount = risk_capital * category.risk_multiplier; position_size =
// risk_amount / |entry - stop|.
func ComputePositionSize(entry, stop, riskCapital, accountBalance float64, category workflow.TradeCategory) PositionSize {
	multiplier := category.RiskMultiplier()
	riskAmount := riskCapital * multiplier

	riskPerShare := entry - stop
	if riskPerShare < 0 {
		riskPerShare = -riskPerShare
	}

	if riskPerShare == 0 || multiplier == 0 {
		return PositionSize{RiskMultiplier: multiplier, IsValid: false}
	}

	size := riskAmount / riskPerShare

	var accountRiskPct float64
	if accountBalance > 0 {
		accountRiskPct = riskAmount / accountBalance * 100
	}

	return PositionSize{
		Size:                  size,
		RiskAmount:            riskAmount,
		RiskMultiplier:        multiplier,
		AccountRiskPercentage: accountRiskPct,
		IsValid:               size > 0,
	}
}
