package shared

import "github.com/shopspring/decimal"

// MoneyScale is the number of fraction digits exposed for monetary amounts
const MoneyScale = 2

// RoundMoney rounds an amount to the exposed money scale
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// SumMoney adds up a list of amounts
func SumMoney(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
