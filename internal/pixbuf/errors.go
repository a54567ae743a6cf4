package pixbuf

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrDimensionMismatch   = errors.New("dimension mismatch")
	ErrParameterOutOfRange = errors.New("parameter out of range")
)

// ValidationError describes a rejected argument. Kind is one of the sentinel
// errors above so callers can use errors.Is.
type ValidationError struct {
	Context string
	Field   string
	Value   interface{}
	Reason  string
	Kind    error
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid %s value %v - %s", ve.Context, ve.Field, ve.Value, ve.Reason)
}

func (ve *ValidationError) Unwrap() error {
	if ve.Kind == nil {
		return ErrInvalidInput
	}
	return ve.Kind
}

func OutOfRange(context, field string, value interface{}, reason string) error {
	return &ValidationError{
		Context: context,
		Field:   field,
		Value:   value,
		Reason:  reason,
		Kind:    ErrParameterOutOfRange,
	}
}

func Invalid(context, field string, value interface{}, reason string) error {
	return &ValidationError{
		Context: context,
		Field:   field,
		Value:   value,
		Reason:  reason,
		Kind:    ErrInvalidInput,
	}
}

// RequirePositive rejects v <= 0.
func RequirePositive(context, field string, v float64) error {
	if !(v > 0) {
		return OutOfRange(context, field, v, "must be greater than 0")
	}
	return nil
}

// RequireOddSize rejects window sizes that are even or smaller than one.
func RequireOddSize(context, field string, size int) error {
	if size < 1 || size%2 == 0 {
		return OutOfRange(context, field, size, "must be an odd number >= 1")
	}
	return nil
}

func RequireSameSize(context string, a, b *Buffer) error {
	if a == nil || b == nil {
		return Invalid(context, "buffer", nil, "buffer is nil")
	}
	if a.width != b.width || a.height != b.height {
		return &ValidationError{
			Context: context,
			Field:   "dimensions",
			Value:   fmt.Sprintf("%dx%d vs %dx%d", a.width, a.height, b.width, b.height),
			Reason:  "buffers must have the same size",
			Kind:    ErrDimensionMismatch,
		}
	}
	return nil
}

func RequireBuffer(context string, b *Buffer) error {
	if b == nil {
		return Invalid(context, "buffer", nil, "buffer is nil")
	}
	if b.width <= 0 || b.height <= 0 {
		return Invalid(context, "buffer", fmt.Sprintf("%dx%d", b.width, b.height), "buffer has zero area")
	}
	return nil
}
