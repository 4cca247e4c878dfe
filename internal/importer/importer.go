// Package importer merges contacts from foreign vCard sources into an
// address book.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-contactbook/internal/config"
	"github.com/tartampluch/go-contactbook/internal/contacts"
	"go.uber.org/multierr"
)

// Source selects where vCards are read from.
type Source struct {
	Mode      string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath string
	WebURL    string
	WebUser   string
}

// SourceFromSettings builds a Source from the import section of the settings.
func SourceFromSettings(s config.Import) Source {
	return Source{
		Mode:      s.Mode,
		LocalPath: s.LocalPath,
		WebURL:    s.WebURL,
		WebUser:   s.WebUser,
	}
}

// Report summarizes an import run.
type Report struct {
	Processed int // cards decoded
	Added     int // records stored in the book
	Skipped   int // values rejected by field validation

	// Problems combines the errors behind skipped cards and values.
	Problems error
}

// Importer converts vCards into records and adds them to a book.
// An imported record replaces any record with the same name.
type Importer struct {
	Clock   contacts.Clock
	Fetcher VCardFetcher

	// Password resolves the web password for a user; defaults to LookupPassword.
	Password func(user string) (string, error)
}

// NewImporter returns an Importer on the real clock using fetcher for web sources.
func NewImporter(fetcher VCardFetcher) *Importer {
	return &Importer{
		Clock:    clock.New(),
		Fetcher:  fetcher,
		Password: LookupPassword,
	}
}

// Import reads every card from src and stores one record per card in book.
func (im *Importer) Import(ctx context.Context, src Source, book *contacts.AddressBook) (Report, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompImporter,
		config.LogKeyMode, src.Mode,
	)
	log.InfoContext(ctx, config.MsgImportStarted)

	reader, err := im.acquireStream(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return Report{}, ctx.Err()
		}
		return Report{}, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	report, err := im.decode(ctx, reader, book)
	if err != nil {
		return report, err
	}

	log.Info(config.MsgImportDone,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, report.Processed),
			slog.Int(config.LogKeyAdded, report.Added),
			slog.Int(config.LogKeySkipped, report.Skipped),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return report, nil
}

func (im *Importer) acquireStream(ctx context.Context, src Source) (io.ReadCloser, error) {
	switch src.Mode {
	case config.SourceModeLocal, "":
		if src.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(src.LocalPath)
	case config.SourceModeWeb:
		if src.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if im.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		lookup := im.Password
		if lookup == nil {
			lookup = LookupPassword
		}
		pass, err := lookup(src.WebUser)
		if err != nil {
			return nil, err
		}
		return im.Fetcher.Fetch(ctx, src.WebURL, src.WebUser, pass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, src.Mode)
	}
}

func (im *Importer) decode(ctx context.Context, r io.Reader, book *contacts.AddressBook) (Report, error) {
	var report Report
	decoder := vcard.NewDecoder(r)

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			return report, nil
		}
		if err != nil {
			// A syntax error leaves the decoder unusable; keep what was read.
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompImporter,
				config.LogKeyError, err)
			report.Problems = multierr.Append(report.Problems, err)
			return report, nil
		}
		report.Processed++

		rec, problems := im.toRecord(card)
		for _, p := range problems {
			report.Skipped++
			report.Problems = multierr.Append(report.Problems, p)
		}
		book.AddRecord(rec)
		report.Added++
	}
}

// toRecord maps FN/N, TEL, BDAY, EMAIL and NOTE onto record fields.
// Invalid values are dropped and returned as problems.
func (im *Importer) toRecord(card vcard.Card) (*contacts.Record, []error) {
	name := cardName(card)
	rec := contacts.NewRecord(contacts.NewName(name))
	var problems []error

	skip := func(prop, value string, err error) {
		slog.Debug(config.MsgSkippedField,
			config.LogKeyComponent, config.CompImporter,
			config.LogKeyName, name,
			config.LogKeyProp, prop,
			config.LogKeyValue, value)
		problems = append(problems, fmt.Errorf("%s %s %q: %w", name, prop, value, err))
	}

	for _, tel := range card[config.VCardTEL] {
		phone, err := contacts.NewPhone(digitsOnly(tel.Value))
		if err != nil {
			skip(config.VCardTEL, tel.Value, err)
			continue
		}
		rec.AddField(phone)
	}

	if bday := card.Get(config.VCardBDAY); bday != nil && bday.Value != "" {
		f, err := im.birthday(bday.Value)
		if err != nil {
			skip(config.VCardBDAY, bday.Value, err)
		} else {
			rec.AddField(f)
		}
	}

	for _, email := range card[config.VCardEMAIL] {
		rec.AddField(contacts.NewGeneric(fmt.Sprintf(config.FormatLabeledField, config.LabelEmail, email.Value)))
	}
	for _, note := range card[config.VCardNOTE] {
		rec.AddField(contacts.NewGeneric(fmt.Sprintf(config.FormatLabeledField, config.LabelNote, note.Value)))
	}
	return rec, problems
}

// birthday turns a date of birth into the next anniversary strictly after
// today, the only kind of date a birthday field accepts.
func (im *Importer) birthday(value string) (contacts.Field, error) {
	born, err := parseDate(value)
	if err != nil {
		return contacts.Field{}, err
	}

	now := im.Clock.Now()
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	next := time.Date(now.Year(), born.Month(), born.Day(), 0, 0, 0, 0, loc)
	if !next.After(today) {
		next = time.Date(now.Year()+1, born.Month(), born.Day(), 0, 0, 0, 0, loc)
	}
	return contacts.NewBirthday(next, contacts.WithClock(im.Clock))
}

// cardName picks FN, then the structured N (given + family), then a fallback.
func cardName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		return fn.Value
	}
	if n := card.Get(config.VCardN); n != nil {
		// N is family;given;additional;prefix;suffix
		parts := strings.Split(n.Value, ";")
		var words []string
		for _, i := range []int{1, 0} {
			if i < len(parts) && parts[i] != "" {
				words = append(words, parts[i])
			}
		}
		if len(words) > 0 {
			return strings.Join(words, " ")
		}
	}
	return config.FallbackName
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseDate handles the vCard BDAY layouts, with or without a year.
func parseDate(value string) (time.Time, error) {
	layouts := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
		config.DateFormatNoYearD,
		config.DateFormatNoYearB,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New(config.ErrDateParse)
}
