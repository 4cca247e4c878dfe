package contacts

import (
	"slices"
	"time"
)

// Record is one contact: a name plus an ordered, open-ended list of fields.
// Duplicates are allowed; lookups compare fields by value.
type Record struct {
	name   Field
	fields []Field
}

// NewRecord creates a record with the given name and initial fields.
func NewRecord(name Field, fields ...Field) *Record {
	return &Record{
		name:   name,
		fields: slices.Clone(fields),
	}
}

// Name returns the identity field.
func (r *Record) Name() Field {
	return r.name
}

// SetName replaces the identity field. The address book key is not updated;
// re-add the record to move it.
func (r *Record) SetName(name Field) {
	r.name = name
}

// Fields returns a copy of the field list in insertion order.
func (r *Record) Fields() []Field {
	return slices.Clone(r.fields)
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// AddField appends f without deduplication.
func (r *Record) AddField(f Field) {
	r.fields = append(r.fields, f)
}

// DeleteField removes the first field equal to f.
// It reports whether a field was removed; absence is not an error.
func (r *Record) DeleteField(f Field) bool {
	i := r.indexOf(f)
	if i < 0 {
		return false
	}
	r.fields = slices.Delete(r.fields, i, i+1)
	return true
}

// EditField replaces the first field equal to old with repl, keeping its position.
// It reports whether a replacement happened.
func (r *Record) EditField(old, repl Field) bool {
	i := r.indexOf(old)
	if i < 0 {
		return false
	}
	r.fields[i] = repl
	return true
}

// HasField reports whether the record holds a field equal to f.
func (r *Record) HasField(f Field) bool {
	return r.indexOf(f) >= 0
}

func (r *Record) indexOf(f Field) int {
	return slices.IndexFunc(r.fields, f.Equal)
}

// BirthdayField returns the first birthday field. Later birthdays are ignored.
func (r *Record) BirthdayField() (Field, bool) {
	for _, f := range r.fields {
		if f.Kind() == KindBirthday {
			return f, true
		}
	}
	return Field{}, false
}

// NextBirthday returns the next anniversary of the birthday's month and day,
// counting today itself as the next one. A Feb 29 birthday falls on March 1
// in non-leap years.
func (r *Record) NextBirthday(today time.Time) (time.Time, bool) {
	f, ok := r.BirthdayField()
	if !ok {
		return time.Time{}, false
	}
	bday, ok := f.Date()
	if !ok {
		return time.Time{}, false
	}

	start := dateOnly(today)
	// time.Date normalizes Feb 29 to March 1 when the year is not a leap year.
	candidate := time.Date(start.Year(), bday.Month(), bday.Day(), 0, 0, 0, 0, time.UTC)
	if candidate.Before(start) {
		candidate = time.Date(start.Year()+1, bday.Month(), bday.Day(), 0, 0, 0, 0, time.UTC)
	}
	return candidate, true
}

// DaysToBirthday returns the number of whole days from today until the next
// birthday, 0 when it is today. The boolean is false when the record has no
// birthday.
func (r *Record) DaysToBirthday(today time.Time) (int, bool) {
	next, ok := r.NextBirthday(today)
	if !ok {
		return 0, false
	}
	return int(next.Sub(dateOnly(today)).Hours() / 24), true
}
