package main

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
	"github.com/tartampluch/go-contactbook/internal/calendar"
	"github.com/tartampluch/go-contactbook/internal/config"
	"github.com/tartampluch/go-contactbook/internal/contacts"
	"github.com/tartampluch/go-contactbook/internal/i18n"
	"github.com/tartampluch/go-contactbook/internal/importer"
	"github.com/tartampluch/go-contactbook/internal/server"
	"github.com/tartampluch/go-contactbook/internal/storage"
)

// appEnv carries the dependencies shared by every command.
type appEnv struct {
	ctx      context.Context
	settings *config.Settings
	clock    clock.Clock
	out      io.Writer
}

// openBook loads the address book from the configured path.
// A missing file yields an empty book.
func (e *appEnv) openBook() (*contacts.AddressBook, error) {
	book := contacts.NewAddressBook(
		contacts.WithPageSize(e.settings.PageSize),
		contacts.WithStore(storage.NewVCardFile()),
	)
	if err := book.LoadFromFile(e.settings.BookPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return book, nil
}

// generator wires the localized calendar renderer.
func (e *appEnv) generator() *calendar.Generator {
	tr := i18n.NewTranslator(e.settings.Language)
	return &calendar.Generator{
		Clock:        e.clock,
		Summary:      tr.Summary,
		CalendarName: tr.CalendarName(),
		Reminder:     e.settings.Reminder,
		ReminderText: tr.Reminder,
	}
}

// -----------------------------------------------------------------------------
// serve
// -----------------------------------------------------------------------------

// ServeCmd publishes the calendar feed and keeps it in sync with the book file.
type ServeCmd struct {
	Port string `help:"Override the listening port." placeholder:"PORT"`
}

// Run executes the serve command.
func (c *ServeCmd) Run(e *appEnv) error {
	if c.Port != "" {
		e.settings.Port = c.Port
		if err := e.settings.Validate(); err != nil {
			return err
		}
	}

	srv := server.NewFeedServer(e.settings.Port, e.generator())
	refresh := func() { e.refreshFeed(srv) }
	refresh()

	if e.settings.RefreshMin > config.DisabledInterval {
		go e.refreshLoop(e.ctx, time.Duration(e.settings.RefreshMin)*time.Minute, refresh)
	}
	return srv.Start(e.ctx)
}

// refreshFeed reloads the book from disk and republishes the feed.
// Failures keep the previous snapshot online.
func (e *appEnv) refreshFeed(srv *server.FeedServer) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	book, err := e.openBook()
	if err != nil {
		log.Error(config.MsgRefreshFailed, config.LogKeyError, err)
		return
	}
	if _, err := srv.Refresh(book); err != nil {
		log.Error(config.MsgRefreshFailed, config.LogKeyError, err)
	}
}

// refreshLoop calls refresh on every tick until ctx is cancelled.
func (e *appEnv) refreshLoop(ctx context.Context, interval time.Duration, refresh func()) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	ticker := e.clock.Ticker(interval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return
		case <-ticker.C:
			refresh()
		}
	}
}

// -----------------------------------------------------------------------------
// export
// -----------------------------------------------------------------------------

// ExportCmd writes the calendar once.
type ExportCmd struct {
	Output string `help:"Destination file, '-' for stdout." short:"o" default:"-"`
}

// Run executes the export command.
func (c *ExportCmd) Run(e *appEnv) error {
	book, err := e.openBook()
	if err != nil {
		return err
	}
	data, _, err := e.generator().Render(book)
	if err != nil {
		return err
	}

	if c.Output == config.StdoutPath {
		if _, err := e.out.Write(data); err != nil {
			return fmt.Errorf("%s: %w", config.ErrWriteExport, err)
		}
		return nil
	}
	if err := os.WriteFile(c.Output, data, config.FilePermUserRW); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteExport, err)
	}
	slog.Info(config.MsgExportWritten,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyFile, c.Output,
		config.LogKeySizeBytes, len(data),
	)
	return nil
}

// -----------------------------------------------------------------------------
// import
// -----------------------------------------------------------------------------

// ImportCmd merges vCards from a local file or a URL into the book file.
// Without flags the source comes from the settings.
type ImportCmd struct {
	From     string `help:"Local vCard file to import." type:"path" xor:"source"`
	URL      string `help:"Remote vCard URL to import." name:"url" xor:"source"`
	User     string `help:"User name for the remote source."`
	Password string `help:"Store this password in the system keyring before importing." env:"CONTACTBOOK_IMPORT_PASSWORD"`

	fetcher importer.VCardFetcher
}

// Run executes the import command.
func (c *ImportCmd) Run(e *appEnv) error {
	src := importer.SourceFromSettings(e.settings.Import)
	switch {
	case c.From != "":
		src = importer.Source{Mode: config.SourceModeLocal, LocalPath: c.From}
	case c.URL != "":
		src.Mode = config.SourceModeWeb
		src.WebURL = c.URL
	}
	if c.User != "" {
		src.WebUser = c.User
	}

	if c.Password != "" && src.WebUser != "" {
		if err := importer.SavePassword(src.WebUser, c.Password); err != nil {
			return err
		}
		slog.Info(config.MsgPasswordSaved,
			config.LogKeyComponent, config.CompImporter,
			config.LogKeyUser, src.WebUser)
	}

	book, err := e.openBook()
	if err != nil {
		return err
	}

	fetcher := c.fetcher
	if fetcher == nil {
		fetcher = importer.NewHTTPFetcher()
	}
	im := importer.NewImporter(fetcher)
	im.Clock = e.clock

	report, err := im.Import(e.ctx, src, book)
	if err != nil {
		return err
	}
	if err := book.SaveToFile(e.settings.BookPath); err != nil {
		return err
	}
	_, err = fmt.Fprintf(e.out, config.FormatImportReport, report.Added, report.Skipped)
	return err
}

// -----------------------------------------------------------------------------
// list & search
// -----------------------------------------------------------------------------

// ListCmd prints every record, one page at a time.
type ListCmd struct {
	PageSize int `help:"Records per page (defaults to the settings value)." short:"n"`
}

// Run executes the list command.
func (c *ListCmd) Run(e *appEnv) error {
	if c.PageSize > 0 {
		e.settings.PageSize = c.PageSize
	}
	book, err := e.openBook()
	if err != nil {
		return err
	}

	n := 0
	for page := range book.Iterator() {
		n++
		if _, err := fmt.Fprintf(e.out, config.FormatPageHeader, n); err != nil {
			return err
		}
		for _, r := range page {
			if err := writeRecord(e.out, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// SearchCmd looks records up by name substring, field text, or exact phone.
type SearchCmd struct {
	Query string `arg:"" optional:"" help:"Name fragment or exact field value."`
	Phone string `help:"Match records holding exactly this phone number."`
}

// Run executes the search command.
func (c *SearchCmd) Run(e *appEnv) error {
	book, err := e.openBook()
	if err != nil {
		return err
	}

	var found []*contacts.Record
	if c.Phone != "" {
		phone, err := contacts.NewPhone(c.Phone)
		if err != nil {
			return err
		}
		found = book.SearchField(phone)
	} else {
		found = book.Search(c.Query)
	}

	if len(found) == 0 {
		_, err := fmt.Fprintln(e.out, config.MsgNoMatch)
		return err
	}
	for _, r := range found {
		if err := writeRecord(e.out, r); err != nil {
			return err
		}
	}
	return nil
}

func writeRecord(w io.Writer, r *contacts.Record) error {
	values := make([]string, 0, r.Len())
	for _, f := range r.Fields() {
		values = append(values, f.String())
	}
	_, err := fmt.Fprintf(w, config.FormatRecordLine, r.Name().String(), strings.Join(values, config.FieldSeparator))
	return err
}
