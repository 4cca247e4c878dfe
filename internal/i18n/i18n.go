// Package i18n localizes the strings written into the birthday calendar.
package i18n

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-contactbook/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator resolves message keys for a single language.
type Translator struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	languages []string
}

// NewTranslator loads the embedded locales and selects lang,
// falling back to English for unknown languages or keys.
func NewTranslator(lang string) *Translator {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	tr := &Translator{bundle: bundle}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		tr.languages = append(tr.languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	if lang == "" {
		lang = config.DefaultLanguage
	}
	tr.localizer = i18n.NewLocalizer(bundle, lang, config.DefaultLanguage)
	return tr
}

// Languages returns the language codes that were loaded.
func (t *Translator) Languages() []string {
	return t.languages
}

// Msg translates key with optional template data and plural count.
// A missing key yields the key itself.
func (t *Translator) Msg(key string, data map[string]any, count any) string {
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
		PluralCount:  count,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// Summary renders the event title for a birthday days away from today.
// A negative days value means the distance is not relevant.
func (t *Translator) Summary(name string, days int) string {
	data := map[string]any{"Name": name, "Count": days}
	switch {
	case days < 0:
		return t.Msg(config.TKeyEvtSummary, data, nil)
	case days == 0:
		return t.Msg(config.TKeyEvtToday, data, nil)
	default:
		return t.Msg(config.TKeyEvtDaysLeft, data, days)
	}
}

// Reminder renders the alarm description for a contact.
func (t *Translator) Reminder(name string) string {
	return t.Msg(config.TKeyEvtReminder, map[string]any{"Name": name}, nil)
}

// CalendarName renders the calendar display name.
func (t *Translator) CalendarName() string {
	return t.Msg(config.TKeyCalName, nil, nil)
}
