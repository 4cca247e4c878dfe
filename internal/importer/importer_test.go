package importer_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-contactbook/internal/config"
	"github.com/tartampluch/go-contactbook/internal/contacts"
	"github.com/tartampluch/go-contactbook/internal/importer"
	"github.com/zalando/go-keyring"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

func newImporter(now time.Time, fetcher importer.VCardFetcher) *importer.Importer {
	clk := clock.NewMock()
	clk.Set(now)
	return &importer.Importer{
		Clock:    clk,
		Fetcher:  fetcher,
		Password: func(string) (string, error) { return "", nil },
	}
}

func writeVCF(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.vcf")
	require.NoError(t, os.WriteFile(path, []byte(content), config.FilePermUserRW))
	return path
}

// -----------------------------------------------------------------------------
// Test Cases
// -----------------------------------------------------------------------------

func TestImport_Local_Success(t *testing.T) {
	path := writeVCF(t, `BEGIN:VCARD
VERSION:4.0
FN:John Doe
TEL;TYPE=cell:+38 (050) 123-45-67
BDAY:1990-01-15
EMAIL:john@example.com
NOTE:met at the conference
END:VCARD
BEGIN:VCARD
VERSION:3.0
N:Smith;Ann;;;
END:VCARD`)

	im := newImporter(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), nil)
	book := contacts.NewAddressBook()

	report, err := im.Import(context.Background(), importer.Source{Mode: config.SourceModeLocal, LocalPath: path}, book)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 2, report.Added)
	assert.Zero(t, report.Skipped)
	assert.NoError(t, report.Problems)

	assert.Equal(t, []string{"John Doe", "Ann Smith"}, book.Names())

	john, ok := book.Record("John Doe")
	require.True(t, ok)
	fields := john.Fields()
	require.Len(t, fields, 4)
	assert.Equal(t, "380501234567", fields[0].String())
	assert.Equal(t, contacts.KindPhone, fields[0].Kind())
	assert.Equal(t, "2024-01-15", fields[1].String(), "birthday projected onto the next occurrence")
	assert.Equal(t, "email: john@example.com", fields[2].String())
	assert.Equal(t, "note: met at the conference", fields[3].String())

	days, ok := john.DaysToBirthday(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 5, days)
}

func TestImport_BirthdayProjection(t *testing.T) {
	tests := []struct {
		name  string
		bday  string
		today time.Time
		want  string
	}{
		{"Later this year", "1980-12-24", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "2024-12-24"},
		{"Already passed", "1980-02-01", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "2025-02-01"},
		{"Today moves to next year", "1980-06-01", time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC), "2025-06-01"},
		{"Basic format", "19800703", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "2024-07-03"},
		{"Year unknown", "--0815", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "2024-08-15"},
		{"Timestamp", "1980-09-09T00:00:00Z", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "2024-09-09"},
		{"Leap day in non-leap year", "2000-02-29", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "2025-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeVCF(t, "BEGIN:VCARD\nVERSION:4.0\nFN:X\nBDAY:"+tt.bday+"\nEND:VCARD\n")
			book := contacts.NewAddressBook()

			_, err := newImporter(tt.today, nil).Import(context.Background(), importer.Source{LocalPath: path}, book)
			require.NoError(t, err)

			rec, ok := book.Record("X")
			require.True(t, ok)
			f, ok := rec.BirthdayField()
			require.True(t, ok)
			assert.Equal(t, tt.want, f.String())
		})
	}
}

func TestImport_InvalidValuesAreSkipped(t *testing.T) {
	path := writeVCF(t, `BEGIN:VCARD
VERSION:4.0
FN:Broken
TEL:call me
TEL:123
BDAY:sometime
END:VCARD`)

	book := contacts.NewAddressBook()
	report, err := newImporter(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil).
		Import(context.Background(), importer.Source{LocalPath: path}, book)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, 2, report.Skipped)
	require.Error(t, report.Problems)
	assert.True(t, errors.Is(report.Problems, contacts.ErrValidation), "phone rejection is a validation error")
	assert.Contains(t, report.Problems.Error(), config.ErrDateParse)

	rec, ok := book.Record("Broken")
	require.True(t, ok)
	assert.Equal(t, 1, rec.Len(), "valid values are kept")
}

func TestImport_FallbackName(t *testing.T) {
	path := writeVCF(t, "BEGIN:VCARD\nVERSION:4.0\nTEL:1\nEND:VCARD\n")
	book := contacts.NewAddressBook()

	_, err := newImporter(time.Now(), nil).Import(context.Background(), importer.Source{LocalPath: path}, book)
	require.NoError(t, err)
	assert.Equal(t, []string{config.FallbackName}, book.Names())
}

func TestImport_Web(t *testing.T) {
	content := "BEGIN:VCARD\nVERSION:3.0\nFN:Remote\nTEL:555\nEND:VCARD\n"

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, "https://dav.example.com/c.vcf", "alice", "s3cret").
		Return(io.NopCloser(strings.NewReader(content)), nil)

	im := newImporter(time.Now(), fetcher)
	im.Password = func(user string) (string, error) {
		assert.Equal(t, "alice", user)
		return "s3cret", nil
	}

	book := contacts.NewAddressBook()
	src := importer.Source{Mode: config.SourceModeWeb, WebURL: "https://dav.example.com/c.vcf", WebUser: "alice"}
	report, err := im.Import(context.Background(), src, book)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	fetcher.AssertExpectations(t)
}

func TestImport_Web_NetworkError(t *testing.T) {
	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	_, err := newImporter(time.Now(), fetcher).Import(context.Background(),
		importer.Source{Mode: config.SourceModeWeb, WebURL: "http://example.com"}, contacts.NewAddressBook())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestImport_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     importer.Source
		fetcher importer.VCardFetcher
		wantErr string
	}{
		{"Empty local path", importer.Source{Mode: config.SourceModeLocal}, nil, config.ErrLocalPathEmpty},
		{"Empty web URL", importer.Source{Mode: config.SourceModeWeb}, nil, config.ErrWebURLEmpty},
		{"Missing fetcher", importer.Source{Mode: config.SourceModeWeb, WebURL: "http://x"}, nil, config.ErrFetcherMissing},
		{"Unknown mode", importer.Source{Mode: "ftp"}, nil, config.ErrModeUnsupport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newImporter(time.Now(), tt.fetcher).Import(context.Background(), tt.src, contacts.NewAddressBook())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestImport_ContextCancellation(t *testing.T) {
	path := writeVCF(t, "BEGIN:VCARD\nVERSION:4.0\nFN:A\nEND:VCARD\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	book := contacts.NewAddressBook()
	_, err := newImporter(time.Now(), nil).Import(ctx, importer.Source{LocalPath: path}, book)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, book.Len())
}

func TestImport_ReplacesSameName(t *testing.T) {
	path := writeVCF(t, "BEGIN:VCARD\nVERSION:4.0\nFN:Dup\nTEL:1\nEND:VCARD\n")
	book := contacts.NewAddressBook()
	book.AddRecord(contacts.NewRecord(contacts.NewName("Dup")))

	_, err := newImporter(time.Now(), nil).Import(context.Background(), importer.Source{LocalPath: path}, book)
	require.NoError(t, err)

	assert.Equal(t, 1, book.Len())
	rec, _ := book.Record("Dup")
	assert.Equal(t, 1, rec.Len())
}

func TestLookupPassword_Keyring(t *testing.T) {
	keyring.MockInit()

	pass, err := importer.LookupPassword("nobody")
	require.NoError(t, err)
	assert.Empty(t, pass, "missing entries yield an empty password")

	require.NoError(t, importer.SavePassword("alice", "s3cret"))
	pass, err = importer.LookupPassword("alice")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pass)

	pass, err = importer.LookupPassword("")
	require.NoError(t, err)
	assert.Empty(t, pass)
}

func TestSourceFromSettings(t *testing.T) {
	s := config.DefaultSettings()
	s.Import.LocalPath = "/tmp/in.vcf"
	src := importer.SourceFromSettings(s.Import)
	assert.Equal(t, importer.Source{Mode: config.SourceModeLocal, LocalPath: "/tmp/in.vcf"}, src)
}
