package types

import "github.com/m-mizutani/goerr/v2"

// Error tags shared across layers. They classify a failure; the caller decides whether
// it is recoverable.
var (
	ErrTagTransport         = goerr.NewTag("transport")
	ErrTagMalformedResponse = goerr.NewTag("malformed_response")
	ErrTagPersistence       = goerr.NewTag("persistence")
	ErrTagSink              = goerr.NewTag("sink")
	ErrTagInvalidConfig     = goerr.NewTag("invalid_config")
)
