package report

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// SettledTolerance is the outstanding amount under which a player counts as paid.
const SettledTolerance = 0.01

// Cents rounds v half away from zero to two decimals.
func Cents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// FormatMoney renders v as dollars, e.g. $1,234.56 or -$80.00.
func FormatMoney(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	f, _ := d.Float64()
	return sign + "$" + humanize.FormatFloat("#,###.##", f)
}
