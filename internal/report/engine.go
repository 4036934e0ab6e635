package report

import (
	"github.com/shopspring/decimal"

	"bilancio/internal/core"
)

// Engine computes the report aggregations. The ledger collaborator is
// injected at construction; the engine never reaches into globals.
type Engine struct {
	ledger Ledger
}

func New(ledger Ledger) *Engine {
	return &Engine{ledger: ledger}
}

var hundred = decimal.NewFromInt(100)

func intDec(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// ratioPercent returns part/whole*100 quantized to two decimals, or zero
// when whole is not positive.
func ratioPercent(part, whole decimal.Decimal) core.Money {
	if !whole.IsPositive() {
		return core.Money{}
	}
	return core.MoneyFromDecimal(part.Div(whole).Mul(hundred))
}

// percent1 returns part/whole*100 rounded to one decimal as a plain number,
// or zero when whole is not positive. Used by the insight and trend views,
// which report percentages as numbers rather than money strings.
func percent1(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	f, _ := part.Div(whole).Mul(hundred).Round(1).Float64()
	return f
}
