package converter

import "github.com/shopspring/decimal"

// Amounts are stored as integer cents.

func ConvertAmountFloatToInt(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
}

func ConvertAmountIntToFloat(amount int64) float64 {
	return decimal.New(amount, -2).InexactFloat64()
}

func ConvertAmountIntToString(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}

// IsCentPrecise reports whether amount has at most two decimal places.
func IsCentPrecise(amount float64) bool {
	return decimal.NewFromFloat(amount).Exponent() >= -2
}
