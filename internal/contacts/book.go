package contacts

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"

	"github.com/tartampluch/go-contactbook/internal/config"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrNoStore is returned by SaveToFile and LoadFromFile when no Store is configured.
var ErrNoStore = errors.New(config.ErrNoStore)

// Store persists a whole address book to a single file.
// Implementations must round-trip record names and field contents.
type Store interface {
	Store(path string, records []*Record) error
	Retrieve(path string) ([]*Record, error)
}

// Page is one contiguous slice of records produced by AddressBook.Iterator.
type Page []*Record

// AddressBook maps a record's name to the record. Names are unique keys.
// It is not safe for concurrent use.
type AddressBook struct {
	records  map[string]*Record
	order    []string // insertion order of keys
	pageSize int
	store    Store
	log      *slog.Logger
}

// Option configures an AddressBook.
type Option func(*AddressBook)

// WithPageSize sets the number of records per page. Non-positive sizes keep the default.
func WithPageSize(n int) Option {
	return func(b *AddressBook) {
		if n > 0 {
			b.pageSize = n
		}
	}
}

// WithStore sets the persistence backend used by SaveToFile and LoadFromFile.
func WithStore(s Store) Option {
	return func(b *AddressBook) {
		b.store = s
	}
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l *slog.Logger) Option {
	return func(b *AddressBook) {
		b.log = l
	}
}

// NewAddressBook creates an empty address book.
func NewAddressBook(opts ...Option) *AddressBook {
	b := &AddressBook{
		records:  make(map[string]*Record),
		pageSize: config.DefaultPageSize,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.With(config.LogKeyComponent, config.CompBook)
	return b
}

// PageSize returns the configured page size.
func (b *AddressBook) PageSize() int {
	return b.pageSize
}

// Len returns the number of records.
func (b *AddressBook) Len() int {
	return len(b.order)
}

// AddRecord stores r under its name, replacing any record with the same name.
// A replaced record keeps its original position.
func (b *AddressBook) AddRecord(r *Record) {
	key := r.Name().String()
	if _, exists := b.records[key]; exists {
		b.log.Debug(config.MsgRecordReplaced, config.LogKeyName, key)
	} else {
		b.order = append(b.order, key)
		b.log.Debug(config.MsgRecordAdded, config.LogKeyName, key, config.LogKeyFields, r.Len())
	}
	b.records[key] = r
}

// Record returns the record stored under name.
func (b *AddressBook) Record(name string) (*Record, bool) {
	r, ok := b.records[name]
	return r, ok
}

// Delete removes the record stored under name. It reports whether one existed.
func (b *AddressBook) Delete(name string) bool {
	if _, ok := b.records[name]; !ok {
		return false
	}
	delete(b.records, name)
	b.order = slices.DeleteFunc(b.order, func(k string) bool { return k == name })
	b.log.Debug(config.MsgRecordDeleted, config.LogKeyName, name)
	return true
}

// Names returns the keys in insertion order.
func (b *AddressBook) Names() []string {
	return slices.Clone(b.order)
}

// Records returns the records in insertion order.
func (b *AddressBook) Records() []*Record {
	out := make([]*Record, 0, len(b.order))
	for _, k := range b.order {
		out = append(out, b.records[k])
	}
	return out
}

// Iterator returns the records split into pages of PageSize records.
// The record list is captured when Iterator is called; later changes to the
// book do not affect the sequence. There are always len/PageSize+1 pages, so
// a count that divides evenly ends with an empty page.
func (b *AddressBook) Iterator() iter.Seq[Page] {
	records := b.Records()
	size := b.pageSize
	numPages := len(records)/size + 1

	return func(yield func(Page) bool) {
		for page := range numPages {
			start := min(page*size, len(records))
			end := min(start+size, len(records))
			if !yield(Page(records[start:end:end])) {
				return
			}
		}
	}
}

// Search returns the records whose name contains query, ignoring case, or
// holding a field whose value prints exactly as query.
func (b *AddressBook) Search(query string) []*Record {
	lower := cases.Lower(language.Und)
	needle := lower.String(query)

	var results []*Record
	for _, r := range b.Records() {
		if strings.Contains(lower.String(r.Name().String()), needle) || hasFieldText(r, query) {
			results = append(results, r)
		}
	}
	return results
}

func hasFieldText(r *Record, text string) bool {
	return slices.ContainsFunc(r.fields, func(f Field) bool {
		return f.String() == text
	})
}

// SearchField returns the records holding a field equal to f.
func (b *AddressBook) SearchField(f Field) []*Record {
	var results []*Record
	for _, r := range b.Records() {
		if r.HasField(f) {
			results = append(results, r)
		}
	}
	return results
}

// SaveToFile writes every record to path through the configured Store.
func (b *AddressBook) SaveToFile(path string) error {
	if b.store == nil {
		return ErrNoStore
	}
	if err := b.store.Store(path, b.Records()); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreSave, err)
	}
	b.log.Debug(config.MsgBookSaved, config.LogKeyFile, path, config.LogKeyRecords, b.Len())
	return nil
}

// LoadFromFile replaces the whole book with the records read from path.
// On error the current records are left untouched.
func (b *AddressBook) LoadFromFile(path string) error {
	if b.store == nil {
		return ErrNoStore
	}
	loaded, err := b.store.Retrieve(path)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreLoad, err)
	}

	b.records = make(map[string]*Record, len(loaded))
	b.order = b.order[:0:0]
	for _, r := range loaded {
		key := r.Name().String()
		if _, exists := b.records[key]; !exists {
			b.order = append(b.order, key)
		}
		b.records[key] = r
	}
	b.log.Debug(config.MsgBookLoaded, config.LogKeyFile, path, config.LogKeyRecords, b.Len())
	return nil
}
