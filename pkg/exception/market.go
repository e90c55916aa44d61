package exception

import "github.com/yanun0323/errors"

var (
	ErrStalePrice      = errors.New("market: stale oracle price")
	ErrNoLiquidity     = errors.New("market: no venue with live quotes")
	ErrVenueUnreadable = errors.New("market: venue account unreadable")
)
