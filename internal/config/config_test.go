package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-contactbook/internal/config"
)

// TestConstants_Integrity ensures critical constants are not empty or malformed.
func TestConstants_Integrity(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"AppName", config.AppName},
		{"AppID", config.AppID},
		{"Version", config.Version},
		{"UserAgent", config.UserAgent},
		{"ICalVersion", config.ICalVersion},
		{"ICalProdid", config.ICalProdid},
		{"VCardVersion", config.VCardVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.value, "Critical constant %s should not be empty", tt.name)
		})
	}
}

func TestDefaults_Sanity(t *testing.T) {
	assert.Equal(t, 5, config.DefaultPageSize, "Default page size is part of the pagination contract")
	assert.Greater(t, config.DefaultRefreshMin, 0)
	assert.Equal(t, 30*time.Second, config.HTTPTimeout)
	assert.True(t, strings.HasPrefix(config.UserAgent, "Go-ContactBook/"))
}

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	s, err := config.LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSettings(), *s)
	assert.NoError(t, s.Validate())
}

func TestLoadSettings_YAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.SettingsFileName)
	yml := `book_path: /tmp/book.vcf
page_size: 3
port: "9000"
language: fr
reminder: -P1D
import:
  mode: web
  web_url: https://dav.example.com/contacts
  web_user: alice
`
	require.NoError(t, os.WriteFile(path, []byte(yml), config.FilePermUserRW))

	t.Setenv("CONTACTBOOK_PORT", "9100")
	t.Setenv("CONTACTBOOK_IMPORT_WEB_USER", "bob")

	s, err := config.LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/book.vcf", s.BookPath)
	assert.Equal(t, 3, s.PageSize)
	assert.Equal(t, "9100", s.Port, "environment overrides the file")
	assert.Equal(t, "fr", s.Language)
	assert.Equal(t, "-P1D", s.Reminder)
	assert.Equal(t, config.SourceModeWeb, s.Import.Mode)
	assert.Equal(t, "bob", s.Import.WebUser)
	assert.Equal(t, config.DefaultRefreshMin, s.RefreshMin, "unset keys keep defaults")
	assert.NoError(t, s.Validate())
}

func TestLoadSettings_UnknownKeyRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.SettingsFileName)
	require.NoError(t, os.WriteFile(path, []byte("colour: blue\n"), config.FilePermUserRW))

	_, err := config.LoadSettings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrSettingsParse)
}

func TestLoadSettings_CommentOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.SettingsFileName)
	require.NoError(t, os.WriteFile(path, []byte("# nothing here\n"), config.FilePermUserRW))

	s, err := config.LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultPageSize, s.PageSize)
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Settings)
		wantErr string
	}{
		{"Empty port", func(s *config.Settings) { s.Port = "" }, config.ErrPortRequired},
		{"Port not a number", func(s *config.Settings) { s.Port = "http" }, config.ErrPortNumber},
		{"Port out of range", func(s *config.Settings) { s.Port = "70000" }, config.ErrPortRange},
		{"Zero page size", func(s *config.Settings) { s.PageSize = 0 }, config.ErrPageSize},
		{"Negative refresh", func(s *config.Settings) { s.RefreshMin = -1 }, config.ErrRefresh},
		{"Bad reminder", func(s *config.Settings) { s.Reminder = "1 day" }, config.ErrReminder},
		{"Unknown language", func(s *config.Settings) { s.Language = "de" }, config.ErrLanguage},
		{"Unknown mode", func(s *config.Settings) { s.Import.Mode = "ftp" }, config.ErrModeUnsupport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
