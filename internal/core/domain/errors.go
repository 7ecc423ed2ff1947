package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSpecNotFound          = errors.New("no specification for document category")
	ErrAuthorityUnknown      = errors.New("unknown authority")
	ErrDimensionUnresolvable = errors.New("resolved dimensions violate aspect ratio bounds")
	ErrSizeExceeded          = errors.New("output exceeds size window")
	ErrEncoderUnavailable    = errors.New("enhanced encoder unavailable")
	ErrUnsupportedFormat     = errors.New("unsupported format")
	ErrInvalidInput          = errors.New("invalid input")
	ErrBatchNotFound         = errors.New("batch not found")
	ErrTemporary             = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
