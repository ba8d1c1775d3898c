// Package deposit implements the deposit form: amount pairing, range
// selection, validation and submission through an external transaction
// builder.
package deposit

import "errors"

// State is the submission state of a session.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome classifies the result of Submit.
type Outcome string

const (
	OutcomeReady         Outcome = "ready"
	OutcomeSuccess       Outcome = "success"
	OutcomeFailed        Outcome = "failed"
	OutcomeAutoCorrected Outcome = "auto_corrected"
	OutcomeRejected      Outcome = "rejected"
)

var (
	ErrSubmitting    = errors.New("a deposit is already being submitted")
	ErrInvalidAmount = errors.New("amount must be a non-negative number")
	ErrSlippage      = errors.New("slippage must be greater than 0 and at most 50 percent")
	ErrNoSubmitter   = errors.New("no transaction submitter configured")
)

// Notices shown with non-submitting outcomes.
const (
	NoticeRangeCorrected = "The selected price range was invalid and has been reset to full range."
	NoticeAmountMissing  = "Enter an amount for both tokens."
	NoticeOneSidedAmount = "Enter an amount for at least one token."
)
