package entity

import "github.com/pkg/errors"

// Every failure the pipeline can produce maps to exactly one of these
// sentinels. Callers match with errors.Is; wrapping adds detail.
var (
	ErrMissingFile      = errors.New("missing file")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrPayloadTooLarge  = errors.New("payload too large")
	ErrImageTooLarge    = errors.New("image resolution too large")
	ErrServiceBusy      = errors.New("service busy, try again later")
	ErrDecode           = errors.New("failed to decode image")
	ErrEncode           = errors.New("failed to encode image")
	ErrTimeout          = errors.New("conversion timed out")
	ErrInternal         = errors.New("internal fault")
)
