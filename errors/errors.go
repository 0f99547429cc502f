package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrInputStream      = fmt.Errorf("unable to open input stream")
	ErrMalformedFrame   = fmt.Errorf("malformed message frame")
	ErrFrameTooLarge    = fmt.Errorf("message frame exceeds maximum size")
	ErrUnknownCriterion = fmt.Errorf("unknown sort criterion")
	ErrUnknownCommand   = fmt.Errorf("unknown command")
	ErrEmptyContent     = fmt.Errorf("empty content is not sent")
	ErrInvalidUsername  = fmt.Errorf("invalid username")
	ErrChannelClosed    = fmt.Errorf("command channel closed")
	ErrOutboundFull     = fmt.Errorf("outbound queue is full")
	ErrRender           = fmt.Errorf("render failed")
	ErrMissingUsername  = fmt.Errorf("no username configured or stored")
)
