// Package storage persists an address book as a vCard file.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tartampluch/go-contactbook/internal/config"
	"github.com/tartampluch/go-contactbook/internal/contacts"
	"go.uber.org/multierr"
)

// VCardFile implements contacts.Store on top of a single .vcf file.
type VCardFile struct{}

// NewVCardFile returns a vCard file store.
func NewVCardFile() *VCardFile {
	return &VCardFile{}
}

var _ contacts.Store = (*VCardFile)(nil)

// Store writes records to path. The data goes to a temporary file in the
// same directory which then replaces path, so a failed write never truncates
// an existing book.
func (s *VCardFile) Store(path string, records []*contacts.Record) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), config.TempPattern)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := tmp.Chmod(config.FilePermUserRW); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err := Encode(tmp, records); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}

	slog.Debug(config.MsgBookSaved,
		config.LogKeyComponent, config.CompStorage,
		config.LogKeyFile, path,
		config.LogKeyRecords, len(records),
	)
	return nil
}

// Retrieve reads every record stored at path.
func (s *VCardFile) Retrieve(path string) (records []*contacts.Record, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	records, err = Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	slog.Debug(config.MsgBookLoaded,
		config.LogKeyComponent, config.CompStorage,
		config.LogKeyFile, path,
		config.LogKeyRecords, len(records),
	)
	return records, nil
}
