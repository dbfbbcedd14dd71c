package aggregator

import "fmt"

// ServerErrorCode is an error code returned by the aggregator service inside
// the response envelope.
type ServerErrorCode uint32

const (
	// CodeCalculateError means the service failed to compute a quote.
	CodeCalculateError ServerErrorCode = 10000
	// CodeNumberTooLarge means an input amount did not fit the target type.
	CodeNumberTooLarge ServerErrorCode = 10001
	// CodeNoRouter means no viable route was found.
	CodeNoRouter ServerErrorCode = 10002
	// CodeInsufficientLiquidity means pools lacked liquidity for the amount.
	CodeInsufficientLiquidity ServerErrorCode = 10003
	// CodeHoneyPot means the target token was flagged as a honey pot scam.
	CodeHoneyPot ServerErrorCode = 10004
)

// ServerErrorCodeFromCode maps a raw code to a known ServerErrorCode.
func ServerErrorCodeFromCode(code uint32) (ServerErrorCode, bool) {
	switch ServerErrorCode(code) {
	case CodeCalculateError, CodeNumberTooLarge, CodeNoRouter,
		CodeInsufficientLiquidity, CodeHoneyPot:
		return ServerErrorCode(code), true
	}
	return 0, false
}

// Message returns the human-readable description of the code.
func (c ServerErrorCode) Message() string {
	switch c {
	case CodeCalculateError:
		return "calculation error"
	case CodeNumberTooLarge:
		return "input number too large for the target type"
	case CodeNoRouter:
		return "no suitable route found"
	case CodeInsufficientLiquidity:
		return "insufficient liquidity"
	case CodeHoneyPot:
		return "target token flagged as a honey pot scam"
	default:
		return "unknown error"
	}
}

// APIError is a structured failure reported by the aggregator service, either
// as a non-2xx HTTP status or as a non-zero code in the response envelope.
// Code and Message are copied verbatim from the service.
type APIError struct {
	Code    uint32
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("aggregator api error (%d): %s", e.Code, e.Message)
}

// ServerErrorCode reports whether the error carries one of the documented
// aggregator error codes.
func (e *APIError) ServerErrorCode() (ServerErrorCode, bool) {
	return ServerErrorCodeFromCode(e.Code)
}

// RequestError is a transport-level failure: the HTTP request itself never
// produced a usable response.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("aggregator request error: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// ParseError means the service replied but the body did not match the
// expected schema.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("aggregator response parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InputError is a locally rejected parameter set; no request was sent.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}
