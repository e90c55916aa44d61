package schema

import (
	"strconv"
	"strings"

	"github.com/yanun0323/decimal"
)

// Decimal renders the price as a human-readable decimal.
func (p Price) Decimal() decimal.Decimal {
	return scaledDecimal(int64(p), 6)
}

// Decimal renders the quantity as a human-readable decimal.
func (q Quantity) Decimal() decimal.Decimal {
	return scaledDecimal(int64(q), 6)
}

// Decimal renders the collateral amount as a human-readable decimal.
func (c Collateral) Decimal() decimal.Decimal {
	return scaledDecimal(int64(c), 9)
}

func scaledDecimal(v int64, digits int) decimal.Decimal {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	if len(s) <= digits {
		s = strings.Repeat("0", digits-len(s)+1) + s
	}
	s = s[:len(s)-digits] + "." + s[len(s)-digits:]
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if neg {
		s = "-" + s
	}
	return decimal.Decimal(s)
}
