// Package contacts holds the address book model: validated fields, records
// and the keyed, paginated collection of records.
package contacts

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/tartampluch/go-contactbook/internal/config"
)

// Kind tags the variant held by a Field.
type Kind int

const (
	KindGeneric Kind = iota
	KindName
	KindPhone
	KindBirthday
)

func (k Kind) String() string {
	switch k {
	case KindName:
		return "name"
	case KindPhone:
		return "phone"
	case KindBirthday:
		return "birthday"
	default:
		return "generic"
	}
}

// ErrValidation is the sentinel matched by every *ValidationError.
var ErrValidation = errors.New(config.ErrValidation)

// ValidationError reports a value rejected by a field's validation rule.
type ValidationError struct {
	Kind   Kind
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %v: %s", config.ErrValidation, e.Kind, e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold for any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Field wraps a single value whose kind-specific rule is checked on every write.
// The zero Field is an empty generic field.
type Field struct {
	kind  Kind
	value any
	clock Clock
}

// FieldOption configures a Field at construction.
type FieldOption func(*Field)

// WithClock sets the clock used to determine "today" when validating birthdays.
func WithClock(c Clock) FieldOption {
	return func(f *Field) {
		f.clock = c
	}
}

// NewField builds a field of the given kind, validating the initial value.
func NewField(kind Kind, value any, opts ...FieldOption) (Field, error) {
	f := Field{kind: kind}
	for _, opt := range opts {
		opt(&f)
	}
	if err := f.Set(value); err != nil {
		return Field{}, err
	}
	return f, nil
}

// NewName builds a name field. Names accept any value.
func NewName(value any) Field {
	return Field{kind: KindName, value: value}
}

// NewGeneric builds a free-form field. Generic fields accept any value.
func NewGeneric(value any) Field {
	return Field{kind: KindGeneric, value: value}
}

// NewPhone builds a phone field; the number must be a non-empty string of digits.
func NewPhone(number string) (Field, error) {
	return NewField(KindPhone, number)
}

// NewBirthday builds a birthday field; the date must be strictly after today.
func NewBirthday(date time.Time, opts ...FieldOption) (Field, error) {
	return NewField(KindBirthday, date, opts...)
}

// ParseBirthday parses a YYYY-MM-DD date and builds a birthday field from it.
func ParseBirthday(value string, opts ...FieldOption) (Field, error) {
	date, err := time.Parse(config.DateFormatISO, value)
	if err != nil {
		return Field{}, &ValidationError{Kind: KindBirthday, Value: value, Reason: config.ErrBirthdayNotDate}
	}
	return NewBirthday(date, opts...)
}

// Restore rebuilds a field from previously persisted data without validation.
// Birthdays saved in the past must still load once their date has gone by.
func Restore(kind Kind, value any) Field {
	return Field{kind: kind, value: value}
}

// Kind returns the variant tag.
func (f Field) Kind() Kind {
	return f.kind
}

// Value returns the stored value.
func (f Field) Value() any {
	return f.value
}

// Set validates value against the field's kind and stores it on success.
// On failure the previous value is kept.
func (f *Field) Set(value any) error {
	if err := f.validate(value); err != nil {
		return err
	}
	if d, ok := value.(time.Time); ok && f.kind == KindBirthday {
		value = dateOnly(d)
	}
	f.value = value
	return nil
}

func (f *Field) validate(value any) error {
	switch f.kind {
	case KindPhone:
		return validatePhone(value)
	case KindBirthday:
		return validateBirthday(value, f.now())
	default:
		return nil
	}
}

func validatePhone(value any) error {
	s, ok := value.(string)
	if !ok {
		return &ValidationError{Kind: KindPhone, Value: value, Reason: config.ErrPhoneNotString}
	}
	if s == "" {
		return &ValidationError{Kind: KindPhone, Value: value, Reason: config.ErrPhoneDigits}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return &ValidationError{Kind: KindPhone, Value: value, Reason: config.ErrPhoneDigits}
		}
	}
	return nil
}

func validateBirthday(value any, now time.Time) error {
	d, ok := value.(time.Time)
	if !ok {
		return &ValidationError{Kind: KindBirthday, Value: value, Reason: config.ErrBirthdayNotDate}
	}
	if !dateOnly(d).After(dateOnly(now)) {
		return &ValidationError{Kind: KindBirthday, Value: d.Format(config.DateFormatISO), Reason: config.ErrBirthdayPast}
	}
	return nil
}

func (f *Field) now() time.Time {
	if f.clock == nil {
		return defaultClock.Now()
	}
	return f.clock.Now()
}

// Date returns the birthday date, if this is a birthday field.
func (f Field) Date() (time.Time, bool) {
	if f.kind != KindBirthday {
		return time.Time{}, false
	}
	d, ok := f.value.(time.Time)
	return d, ok
}

// Equal reports whether both fields have the same kind and value.
// Dates compare by calendar day.
func (f Field) Equal(other Field) bool {
	if f.kind != other.kind {
		return false
	}
	a, aok := f.value.(time.Time)
	b, bok := other.value.(time.Time)
	if aok && bok {
		return dateOnly(a).Equal(dateOnly(b))
	}
	return reflect.DeepEqual(f.value, other.value)
}

// String renders the value; birthdays use the YYYY-MM-DD layout.
func (f Field) String() string {
	switch v := f.value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format(config.DateFormatISO)
	default:
		return fmt.Sprint(v)
	}
}

// dateOnly truncates t to its calendar date in UTC, dropping the time and zone.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
