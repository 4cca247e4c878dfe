package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client used for remote vCard imports.
var UserAgent = "Go-ContactBook/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go ContactBook"
	AppID             = "com.github.tartampluch.go-contactbook"
	KeyringService    = "com.github.tartampluch.go-contactbook"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	SettingsFileName  = "contactbook.yaml"
	DefaultBookFile   = "contacts.vcf"
	BinaryName        = "contactbook"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for the address book file and logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// Address Book Defaults
// -----------------------------------------------------------------------------

const (
	DefaultPageSize   = 5
	DefaultPort       = "18080"
	DefaultRefreshMin = 60
	DefaultLanguage   = "en"
	DisabledInterval  = 0
	DateFormatISO     = "2006-01-02"
)

// SupportedLanguages defines the list of available locales (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyEvtSummary  = "event_summary"   // Requires Name
	TKeyEvtToday    = "event_today"     // Requires Name
	TKeyEvtDaysLeft = "event_days_left" // Requires Name, Count
	TKeyEvtReminder = "event_reminder"  // Requires Name
	TKeyCalName     = "calendar_name"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go ContactBook//Calendar//EN"
	ICalCalName   = "Contact Birthdays"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gocontactbook"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	DefaultICalRefresh = 1 * time.Hour

	// vCard properties
	VCardVersion = "4.0"
	VCardBDAY    = "BDAY"
	VCardFN      = "FN"
	VCardN       = "N"
	VCardTEL     = "TEL"
	VCardEMAIL   = "EMAIL"
	VCardNOTE    = "NOTE"
	VCardUID     = "UID"

	// Private vCard extensions used by the address book file format.
	VCardXName      = "X-CONTACTBOOK-NAME"
	VCardXField     = "X-CONTACTBOOK-FIELD"
	VCardParamIndex = "X-CONTACTBOOK-INDEX"
	VCardParamValue = "VALUE"
	VCardValueDate  = "date"
	VCardUIDPrefix  = "urn:uuid:"

	// Generic field labels for imported properties.
	LabelEmail         = "email"
	LabelNote          = "note"
	FormatLabeledField = "%s: %s"
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	// Date layouts accepted for vCard BDAY values.
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Limits
	MinPort = 1
	MaxPort = 65535

	FormatUID = "%s-%d@%s"

	// File Extensions
	ExtVCF      = ".vcf"
	ExtVCard    = ".vcard"
	ExtICS      = ".ics"
	TempPattern = ".contactbook-*.tmp"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrValidation      = "validation failed"
	ErrPhoneNotString  = "phone number must be a string"
	ErrPhoneDigits     = "phone number must contain only digits"
	ErrBirthdayNotDate = "birthday must be a date"
	ErrBirthdayPast    = "birthday must be strictly after today"
	ErrNoStore         = "address book has no storage configured"
	ErrStoreSave       = "failed to save address book"
	ErrStoreLoad       = "failed to load address book"
	ErrVCardEncode     = "failed to encode vCard stream"
	ErrVCardParse      = "failed to parse vCard stream"
	ErrVCardNoName     = "vCard has no name"
	ErrVCardFieldKind  = "unknown field property"
	ErrVCardIndex      = "invalid field index"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrDateParse       = "unable to parse date"
	ErrLocalPathEmpty  = "configuration error: local path is empty"
	ErrWebURLEmpty     = "configuration error: web URL is empty"
	ErrFetcherMissing  = "internal error: network fetcher is not initialized"
	ErrRendererMissing = "internal error: calendar renderer is not initialized"
	ErrModeUnsupport   = "configuration error: unsupported source mode"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrPortNumber      = "server port must be a number"
	ErrPortRange       = "server port must be between 1 and 65535"
	ErrPageSize        = "page size must be positive"
	ErrRefresh         = "refresh interval must not be negative"
	ErrReminder        = "reminder must be an ISO-8601 duration such as -P1D"
	ErrLanguage        = "unsupported language"
	ErrSettingsRead    = "failed to read settings"
	ErrSettingsParse   = "failed to parse settings"
	ErrSettingsEnv     = "failed to apply environment overrides"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrKeyring         = "failed to read credentials from keyring"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrWriteExport     = "failed to write calendar export"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary      = "Birthday: %s"
	FallbackSummaryToday = "Birthday: %s (today)"
	FallbackSummaryDays  = "Birthday: %s (in %d days)"
	FallbackName         = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgRecordAdded    = "Record stored"
	MsgRecordReplaced = "Record replaced"
	MsgRecordDeleted  = "Record deleted"
	MsgBookSaved      = "Address book saved"
	MsgBookLoaded     = "Address book loaded"
	MsgImportStarted  = "Import started"
	MsgImportDone     = "Import finished"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedField   = "Skipping invalid vCard value"
	MsgGenSuccess     = "Calendar generation successful"
	MsgBdayToday      = "Birthday found today"
	MsgAppStarting    = "Starting application"
	MsgAppStop        = "Application stopped gracefully"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Calendar cache updated"
	MsgRefreshFailed  = "Calendar refresh failed"
	MsgWorkerStart    = "Background worker started"
	MsgWorkerStop     = "Worker stopping due to context cancellation"
	MsgExportWritten  = "Calendar exported"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgDownloadStart  = "Initiating vCard download"
	MsgDownloadStatus = "Server returned error status"
	MsgPasswordSaved  = "Password stored in keyring"
	MsgCtxCancel      = "Context cancelled, stopping"
)

// -----------------------------------------------------------------------------
// CLI Output
// -----------------------------------------------------------------------------

const (
	StdoutPath         = "-"
	FormatVersion      = "%s (commit %s, built %s) %s/%s"
	FormatPageHeader   = "--- page %d ---\n"
	FormatRecordLine   = "%s: %s\n"
	FormatImportReport = "imported %d record(s), skipped %d value(s)\n"
	FieldSeparator     = "; "
	MsgNoMatch         = "no matching records"
)

// -----------------------------------------------------------------------------
// Import Source Modes
// -----------------------------------------------------------------------------

const (
	SourceModeWeb   = "web"
	SourceModeLocal = "local"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeyName      = "name"
	LogKeyFields    = "fields"
	LogKeyRecords   = "records"
	LogKeyTotal     = "total_cards"
	LogKeyAdded     = "added"
	LogKeySkipped   = "skipped"
	LogKeyFound     = "birthdays_found"
	LogKeyToday     = "birthdays_today"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyProp      = "property"
	LogKeyStats     = "stats"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompBook     = "book"
	CompStorage  = "storage"
	CompCalendar = "calendar"
	CompImporter = "importer"
	CompFetcher  = "fetcher"
	CompServer   = "server"
	CompWorker   = "worker"
	CompMain     = "main"
	CompI18n     = "i18n"
)
