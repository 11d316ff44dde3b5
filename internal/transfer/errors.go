package transfer

import "fmt"

// Code classifies a transfer failure for the service boundary. Every error
// leaving the service carries exactly one code; nothing escapes raw.
type Code string

const (
	CodeInvalidRequest        Code = "invalid_request"
	CodeUnauthorized          Code = "unauthorized"
	CodeRecipientNotFound     Code = "recipient_not_found"
	CodeRecipientHasNoAccount Code = "recipient_has_no_account"
	CodeLedgerWriteFailed     Code = "ledger_write_failed"
	CodeTimeout               Code = "timeout"
)

// WriteSide identifies which half of the two-sided write failed. For
// side=recipient the debit is already committed and is not rolled back.
type WriteSide string

const (
	SideSender    WriteSide = "sender"
	SideRecipient WriteSide = "recipient"
)

// Error is the uniform error shape crossing the service boundary.
type Error struct {
	Code    Code
	Side    WriteSide // set only for CodeLedgerWriteFailed
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func invalidRequest(msg string) *Error {
	return &Error{Code: CodeInvalidRequest, Message: msg}
}

func unauthorized(msg string, cause error) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg, cause: cause}
}

func writeFailed(side WriteSide, msg string, cause error) *Error {
	return &Error{Code: CodeLedgerWriteFailed, Side: side, Message: msg, cause: cause}
}

func timedOut(op string, cause error) *Error {
	return &Error{Code: CodeTimeout, Message: op + " timed out", cause: cause}
}
