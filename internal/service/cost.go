package service

import "github.com/shopspring/decimal"

// CalculateCost prices a turn from token usage. Prices are USD per 1M
// tokens, as returned by the catalog.
func CalculateCost(promptTokens, completionTokens int, promptPrice, completionPrice float64) decimal.Decimal {
	promptCost := decimal.NewFromFloat(float64(promptTokens) * promptPrice / 1_000_000)
	completionCost := decimal.NewFromFloat(float64(completionTokens) * completionPrice / 1_000_000)
	return promptCost.Add(completionCost)
}
