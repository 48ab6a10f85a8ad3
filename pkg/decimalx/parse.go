package decimalx

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

func MustFromString(s string) decimal.Decimal {
	res, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return res
}

// FromAny 解析 json 解码后的数值, 支持 float64 / json.Number / string
func FromAny(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("nil value")
	case float64:
		return decimal.NewFromFloat(val), nil
	case float32:
		return decimal.NewFromFloat32(val), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	case json.Number:
		return decimal.NewFromString(val.String())
	case string:
		return decimal.NewFromString(val)
	default:
		return decimal.Zero, fmt.Errorf("unsupported decimal type %T", v)
	}
}
