package exception

import "github.com/yanun0323/errors"

var (
	ErrInvalidDiscriminator = errors.New("codec: invalid record discriminator")
	ErrTruncatedRecord      = errors.New("codec: truncated record")
	ErrMalformedTag         = errors.New("codec: malformed optional tag")
	ErrUnknownRecordKind    = errors.New("codec: unknown record kind")
)
