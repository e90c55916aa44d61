package exception

import "github.com/yanun0323/errors"

var (
	ErrAccountNotFound  = errors.New("gateway: account not found")
	ErrGatewayStatus    = errors.New("gateway: unexpected response status")
	ErrEmptyAccountData = errors.New("gateway: account has no data")
)
