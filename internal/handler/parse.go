package handler

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/unxversal/pointgate/internal/model"
	"github.com/unxversal/pointgate/internal/pkg/apperrors"
)

// 上游发来的金额是十进制字符串（"1234.56"），在这里一次性转成 1e6 定点
// int64。引擎内部绝不碰浮点。

func parseAddress(field, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, apperrors.NewInvalidRequest(fmt.Sprintf("%s is not a valid address: %q", field, s))
	}
	return common.HexToAddress(s), nil
}

func parseAmount(field, s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, apperrors.NewInvalidRequest(fmt.Sprintf("%s is not a valid decimal: %q", field, s))
	}
	scaled := d.Mul(decimal.NewFromInt(model.UsdScale)).Truncate(0)
	big := scaled.BigInt()
	if !big.IsInt64() {
		return 0, apperrors.NewInvalidRequest(fmt.Sprintf("%s overflows the fixed-point range: %q", field, s))
	}
	return big.Int64(), nil
}

// parseNonNegAmount 解析必须非负的金额字段 (名义价值、权利金、利息等)。
func parseNonNegAmount(field, s string) (int64, error) {
	v, err := parseAmount(field, s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, apperrors.NewInvalidRequest(fmt.Sprintf("%s must be non-negative: %q", field, s))
	}
	return v, nil
}

// parseOptionalAmount treats missing fields as zero (pnl gain/loss may omit
// one side).
func parseOptionalAmount(field, s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return parseNonNegAmount(field, s)
}

// formatAmount renders a 1e6 fixed-point value back to a decimal string.
func formatAmount(v int64) string {
	return decimal.New(v, -6).String()
}
