package entity

import "context"

// ConversionRequest carries one fully received upload through the
// pipeline. It is handed to exactly one worker and never mutated.
type ConversionRequest struct {
	Filename string
	Data     []byte
	Quality  int
}

// ConversionResult is the terminal outcome of one conversion. Either
// Data is set or Err is set, never both.
type ConversionResult struct {
	Filename    string
	ContentType string
	Data        []byte
	Err         error
}

type ConversionUsecase interface {
	Convert(ctx context.Context, req ConversionRequest) (ConversionResult, error)
	AvailablePermits() int
}

// Codec is the external decode/encode collaborator. The pipeline
// treats it as an opaque, possibly slow, possibly failing operation.
type Codec interface {
	Convert(ctx context.Context, data []byte, quality int) ([]byte, error)
	TargetExt() string
	ContentType() string
}
