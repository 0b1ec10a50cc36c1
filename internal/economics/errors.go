package economics

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is the family of field-level problems reported as Violations
	ErrValidation = errors.New("validation failed")

	// ErrInvariantViolation is the family of entity-level invariant failures
	ErrInvariantViolation = errors.New("invariant violation")

	ErrMissingRequiredField   = fmt.Errorf("%w: missing required field", ErrValidation)
	ErrGemPoolTooSmall        = fmt.Errorf("%w: gem pool too small", ErrValidation)
	ErrInvalidKeyCost         = fmt.Errorf("%w: invalid key cost", ErrValidation)
	ErrInvalidMaxParticipants = fmt.Errorf("%w: invalid max participants", ErrValidation)

	// ErrNoDrops is returned when publishing a campaign without drops
	ErrNoDrops = fmt.Errorf("%w: campaign has no drops", ErrValidation)

	// ErrBudgetExceeded is returned when a spend would exceed the total budget
	ErrBudgetExceeded = fmt.Errorf("%w: budget exceeded", ErrInvariantViolation)

	// ErrInsufficientBudget is returned when a campaign's budget cannot cover its worst-case payout
	ErrInsufficientBudget = fmt.Errorf("%w: insufficient budget", ErrInvariantViolation)

	// ErrQuantityExceeded is returned when claiming a fully claimed coupon
	ErrQuantityExceeded = fmt.Errorf("%w: coupon quantity exceeded", ErrInvariantViolation)

	// ErrCampaignClosed is returned when funding a completed campaign
	ErrCampaignClosed = fmt.Errorf("%w: campaign is completed", ErrInvariantViolation)
)

// Code identifies a violation so clients can render a specific message.
type Code string

const (
	CodeMissingRequiredField     Code = "MissingRequiredField"
	CodeFieldTooLong             Code = "FieldTooLong"
	CodeInvalidDropType          Code = "InvalidDropType"
	CodeInvalidDifficulty        Code = "InvalidDifficulty"
	CodePolicyMismatch           Code = "PolicyMismatch"
	CodeInvalidAmount            Code = "InvalidAmount"
	CodeGemPoolTooSmall          Code = "GemPoolTooSmall"
	CodeInvalidMaxParticipants   Code = "InvalidMaxParticipants"
	CodeInvalidKeyCost           Code = "InvalidKeyCost"
	CodeInvalidDeadline          Code = "InvalidDeadline"
	CodeInvalidFollowerThreshold Code = "InvalidFollowerThreshold"
	CodeInvalidDateRange         Code = "InvalidDateRange"
	CodeInvalidDiscount          Code = "InvalidDiscount"
	CodeInvalidQuantity          Code = "InvalidQuantity"
	CodeQuantityExceeded         Code = "QuantityExceeded"
	CodeBudgetExceeded           Code = "BudgetExceeded"
	CodeInvalidContentType       Code = "InvalidContentType"
	CodeNoDrops                  Code = "NoDrops"
	CodeInsufficientBudget       Code = "InsufficientBudget"
)

var codeErrors = map[Code]error{
	CodeMissingRequiredField:   ErrMissingRequiredField,
	CodeGemPoolTooSmall:        ErrGemPoolTooSmall,
	CodeInvalidKeyCost:         ErrInvalidKeyCost,
	CodeInvalidMaxParticipants: ErrInvalidMaxParticipants,
	CodeNoDrops:                ErrNoDrops,
	CodeBudgetExceeded:         ErrBudgetExceeded,
	CodeInsufficientBudget:     ErrInsufficientBudget,
	CodeQuantityExceeded:       ErrQuantityExceeded,
}

// Violation is one field-level problem, serialized as {field, code, message}.
type Violation struct {
	Field   string `json:"field"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (v Violation) Error() string {
	return v.Field + ": " + v.Message
}

// Unwrap maps the code to its sentinel so errors.Is works on a single violation.
func (v Violation) Unwrap() error {
	if err, ok := codeErrors[v.Code]; ok {
		return err
	}
	return ErrValidation
}

// Violations is an ordered checklist of everything wrong with an input.
type Violations []Violation

func (vs Violations) Error() string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.Error()
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes each violation to errors.Is / errors.As.
func (vs Violations) Unwrap() []error {
	errs := make([]error, len(vs))
	for i, v := range vs {
		errs[i] = v
	}
	return errs
}

// Err returns vs as an error, or nil when there are no violations.
func (vs Violations) Err() error {
	if len(vs) == 0 {
		return nil
	}
	return vs
}

// Has reports whether any violation carries code.
func (vs Violations) Has(code Code) bool {
	for _, v := range vs {
		if v.Code == code {
			return true
		}
	}
	return false
}

// Codes lists the violation codes in order.
func (vs Violations) Codes() []Code {
	codes := make([]Code, len(vs))
	for i, v := range vs {
		codes[i] = v.Code
	}
	return codes
}

func (vs Violations) add(field string, code Code, format string, args ...any) Violations {
	return append(vs, Violation{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (vs Violations) prefixed(prefix string) Violations {
	out := make(Violations, len(vs))
	for i, v := range vs {
		v.Field = prefix + v.Field
		out[i] = v
	}
	return out
}

// InvariantError is a single fatal invariant failure on a mutating operation.
type InvariantError struct {
	Err       error
	Attempted string
	Available string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%v: attempted %s, available %s", e.Err, e.Attempted, e.Available)
}

func (e *InvariantError) Unwrap() error { return e.Err }
