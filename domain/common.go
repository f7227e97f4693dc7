package domain

import "errors"

var (
	MessageFailedBodyRequest    = "failed to process request body"
	MessageFailedProcessRequest = "failed to process request"

	ErrParseUUID = errors.New("failed to parse UUID")
)
