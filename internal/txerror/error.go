package txerror

import (
	"errors"
	"fmt"
	"strings"
)

// TxError is a translated transaction failure. Raw keeps the original
// message for logs.
type TxError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Raw     string `json:"raw,omitempty"`
	cause   error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *TxError) Unwrap() error {
	return e.cause
}

// Is matches another *TxError with the same code.
func (e *TxError) Is(target error) bool {
	t, ok := target.(*TxError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Translate maps err to a TxError. Errors that are already translated pass
// through; unrecognised ones keep their raw message.
func Translate(err error) *TxError {
	if err == nil {
		return nil
	}
	var txErr *TxError
	if errors.As(err, &txErr) {
		return txErr
	}
	raw := err.Error()
	code := Classify(raw)
	msg := Message(code)
	if msg == "" {
		msg = raw
	}
	return &TxError{Code: code, Message: msg, Raw: raw, cause: err}
}

// Classify returns the code for a raw failure message.
func Classify(raw string) Code {
	lower := strings.ToLower(raw)
	for _, p := range patterns {
		if strings.Contains(lower, p.substr) {
			return p.code
		}
	}
	return CodeUnknown
}
