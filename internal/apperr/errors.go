package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation           Kind = "VALIDATION"
	KindNotFound             Kind = "NOT_FOUND"
	KindInsufficientResource Kind = "INSUFFICIENT_RESOURCE"
	KindExternalIO           Kind = "EXTERNAL_IO"
)

// Error carries a Kind so the HTTP layer can map it without knowing every sentinel.
type Error struct {
	Kind   Kind
	Op     string
	Msg    string
	Fields map[string]string // validation only: field -> message
	Err    error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// IO marks err as a store/network failure unless it already carries a kind.
func IO(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return Wrap(KindExternalIO, op, err)
}

// Validation builds a validation error listing every offending field.
func Validation(op string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: "please fill in all required fields", Fields: fields}
}

// KindOf returns the kind of the first *Error in the chain, or "" when there is none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

var (
	ErrInsufficientCash   = New(KindInsufficientResource, "", "insufficient cash")
	ErrInsufficientPoints = New(KindInsufficientResource, "", "insufficient points to redeem")
	ErrInsufficientStock  = New(KindInsufficientResource, "", "insufficient stock")
	ErrNoRoomAvailable    = New(KindInsufficientResource, "", "sorry, no rooms are available for the selected dates")
	ErrNoPointsToRedeem   = New(KindValidation, "", "no points to redeem")
	ErrInvalidAmount      = New(KindValidation, "", "amount must be a positive integer")
	ErrInvalidCash        = New(KindValidation, "", "please enter a valid cash amount")
	ErrMissingUser        = New(KindValidation, "", "no authenticated user")
	ErrNotMember          = New(KindValidation, "", "no membership attached to this checkout")
	ErrEmptyCart          = New(KindValidation, "", "cart is empty")
	ErrInvalidRedemption  = New(KindValidation, "", "point redemption is not valid for this checkout")

	ErrMemberNotFound  = New(KindNotFound, "", "membership not found")
	ErrCartNotFound    = New(KindNotFound, "", "cart not found")
	ErrProductNotFound = New(KindNotFound, "", "product not found")
	ErrBookingNotFound = New(KindNotFound, "", "booking not found")
	ErrRoomNotFound    = New(KindNotFound, "", "room not found")
	ErrPaymentNotFound = New(KindNotFound, "", "payment not found")

	ErrIllegalTransition = New(KindValidation, "", "illegal booking status transition")
)
