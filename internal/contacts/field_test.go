package contacts_test

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-contactbook/internal/contacts"
)

// mockClockAt returns a mock clock frozen at the given instant.
func mockClockAt(t time.Time) *clock.Mock {
	c := clock.NewMock()
	c.Set(t)
	return c
}

func TestNewPhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Digits only", "0501234567", false},
		{"Single digit", "7", false},
		{"Empty", "", true},
		{"Leading plus", "+380501234567", true},
		{"Spaces", "050 123 45 67", true},
		{"Dashes", "050-123", true},
		{"Letters", "abc", true},
		{"Non-ASCII digits", "١٢٣", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := contacts.NewPhone(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, contacts.ErrValidation))
				var vErr *contacts.ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, contacts.KindPhone, vErr.Kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, f.Value())
			assert.Equal(t, contacts.KindPhone, f.Kind())
		})
	}
}

func TestPhone_SetRejectsNonString(t *testing.T) {
	f, err := contacts.NewPhone("123")
	require.NoError(t, err)

	err = f.Set(12345)
	require.ErrorIs(t, err, contacts.ErrValidation)
	assert.Equal(t, "123", f.Value(), "a rejected write must keep the previous value")

	require.NoError(t, f.Set("456"))
	assert.Equal(t, "456", f.Value())
}

func TestNewBirthday(t *testing.T) {
	clk := mockClockAt(time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC))

	tests := []struct {
		name    string
		date    time.Time
		wantErr bool
	}{
		{"Tomorrow", time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), false},
		{"Next year", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), false},
		{"Today", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), true},
		{"Today later in the day", time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC), true},
		{"Yesterday", time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC), true},
		{"Long ago", time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := contacts.NewBirthday(tt.date, contacts.WithClock(clk))
			if tt.wantErr {
				require.ErrorIs(t, err, contacts.ErrValidation)
				return
			}
			require.NoError(t, err)
			d, ok := f.Date()
			require.True(t, ok)
			assert.Equal(t, tt.date.Format("2006-01-02"), d.Format("2006-01-02"))
		})
	}
}

func TestBirthday_SetValidatesEveryWrite(t *testing.T) {
	clk := mockClockAt(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	f, err := contacts.NewBirthday(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), contacts.WithClock(clk))
	require.NoError(t, err)

	assert.ErrorIs(t, f.Set("2024-03-01"), contacts.ErrValidation, "strings are not dates")
	assert.ErrorIs(t, f.Set(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)), contacts.ErrValidation)
	assert.Equal(t, "2024-02-01", f.String())

	// Time moves on: the stored date is now in the past, and re-assigning it fails.
	clk.Add(60 * 24 * time.Hour)
	d, _ := f.Date()
	assert.ErrorIs(t, f.Set(d), contacts.ErrValidation)
}

func TestParseBirthday(t *testing.T) {
	clk := mockClockAt(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	f, err := contacts.ParseBirthday("2024-12-25", contacts.WithClock(clk))
	require.NoError(t, err)
	assert.Equal(t, "2024-12-25", f.String())

	_, err = contacts.ParseBirthday("25/12/2024", contacts.WithClock(clk))
	assert.ErrorIs(t, err, contacts.ErrValidation)
}

func TestName_AcceptsAnything(t *testing.T) {
	assert.Equal(t, "", contacts.NewName("").String())
	assert.Equal(t, "42", contacts.NewName(42).String())

	f := contacts.NewName("John")
	require.NoError(t, f.Set(""))
	assert.Equal(t, "", f.Value())
}

func TestNewField_Generic(t *testing.T) {
	f, err := contacts.NewField(contacts.KindGeneric, "likes tea")
	require.NoError(t, err)
	assert.Equal(t, "likes tea", f.String())
	assert.Equal(t, "generic", f.Kind().String())
}

func TestField_Equal(t *testing.T) {
	p1, _ := contacts.NewPhone("123")
	p2, _ := contacts.NewPhone("123")
	p3, _ := contacts.NewPhone("456")

	assert.True(t, p1.Equal(p2), "fields compare by value")
	assert.False(t, p1.Equal(p3))
	assert.False(t, p1.Equal(contacts.NewGeneric("123")), "kinds must match")

	b1 := contacts.Restore(contacts.KindBirthday, time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC))
	b2 := contacts.Restore(contacts.KindBirthday, time.Date(2030, 1, 2, 0, 0, 0, 0, time.FixedZone("X", 3600)))
	assert.True(t, b1.Equal(b2), "birthdays compare by calendar date")
}

func TestRestore_SkipsValidation(t *testing.T) {
	past := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	f := contacts.Restore(contacts.KindBirthday, past)
	d, ok := f.Date()
	require.True(t, ok)
	assert.Equal(t, past, d)
}
