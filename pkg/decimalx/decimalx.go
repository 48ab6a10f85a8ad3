package decimalx

import "github.com/shopspring/decimal"

// Fixed2 保留两位小数, 与报价展示一致
func Fixed2(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// IsRising 涨跌幅 >= 0 视为上涨
func IsRising(change decimal.Decimal) bool {
	return !change.IsNegative()
}
