package exception

import "github.com/yanun0323/errors"

var (
	ErrInsufficientLiquidity = errors.New("trade: insufficient liquidity")
	ErrInsufficientMargin    = errors.New("trade: insufficient margin")
	ErrInvalidLeverage       = errors.New("trade: leverage out of range")
	ErrInvalidSide           = errors.New("trade: invalid side")
	ErrInvalidQuantity       = errors.New("trade: quantity must be positive")
)
