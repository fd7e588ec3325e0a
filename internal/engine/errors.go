package engine

import (
	"errors"
	"fmt"
)

// ConvertError reports why an inbound message was dropped.
//
// A ConvertError never aborts the engine. It is turned into an error
// message on the outbound channel and the conversion state is left as it
// was before the message arrived.
type ConvertError struct {
	// Code identifies the error category.
	Code ConvertErrorCode

	// Message is a human-readable description.
	Message string

	// Index is the payload position of the failing record, or -1.
	Index int

	// Err is the underlying cause.
	Err error
}

// ConvertErrorCode categorizes conversion errors.
type ConvertErrorCode string

const (
	// ErrCodeDecodeEnvelope indicates the message is not a JSON object with a command.
	ErrCodeDecodeEnvelope ConvertErrorCode = "DECODE_ENVELOPE"

	// ErrCodeDecodeProject indicates the project field is absent or not a valid UUID.
	ErrCodeDecodeProject ConvertErrorCode = "DECODE_PROJECT"

	// ErrCodeDecodePayload indicates the payload is not an array of records.
	ErrCodeDecodePayload ConvertErrorCode = "DECODE_PAYLOAD"

	// ErrCodeDecodeRecord indicates one record in the payload did not decode.
	ErrCodeDecodeRecord ConvertErrorCode = "DECODE_RECORD"

	// ErrCodeEncodeDocument indicates a derived document could not be encoded.
	ErrCodeEncodeDocument ConvertErrorCode = "ENCODE_DOCUMENT"
)

// Error implements the error interface.
func (e *ConvertError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s (record=%d)", msg, e.Index)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ConvertError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err is a ConvertError caused by bad input.
// Uses errors.As to handle wrapped errors.
func IsDecodeError(err error) bool {
	var ce *ConvertError
	if errors.As(err, &ce) {
		switch ce.Code {
		case ErrCodeDecodeEnvelope, ErrCodeDecodeProject, ErrCodeDecodePayload, ErrCodeDecodeRecord:
			return true
		}
	}
	return false
}

// ErrorCode returns the ConvertErrorCode carried by err, or "".
func ErrorCode(err error) ConvertErrorCode {
	var ce *ConvertError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

func newConvertError(code ConvertErrorCode, msg string, err error) *ConvertError {
	return &ConvertError{Code: code, Message: msg, Index: -1, Err: err}
}
