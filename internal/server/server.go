// Package server publishes the rendered birthday calendar over HTTP.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-contactbook/internal/config"
	"github.com/tartampluch/go-contactbook/internal/contacts"
)

// Renderer turns an address book into an ICS document.
// *calendar.Generator satisfies it.
type Renderer interface {
	Render(book *contacts.AddressBook) ([]byte, int, error)
}

// snapshot is one published version of the feed.
type snapshot struct {
	body         []byte
	etag         string
	lastModified string // http.TimeFormat
}

// FeedServer serves the latest calendar snapshot. Reads are lock-free; the
// snapshot is swapped atomically on every refresh.
type FeedServer struct {
	current  atomic.Pointer[snapshot]
	renderer Renderer
	Port     string
}

// NewFeedServer creates a server listening on port that renders with r.
func NewFeedServer(port string, r Renderer) *FeedServer {
	return &FeedServer{
		renderer: r,
		Port:     port,
	}
}

// Refresh renders book and publishes the result.
// It returns the number of birthdays falling today.
func (s *FeedServer) Refresh(book *contacts.AddressBook) (int, error) {
	if s.renderer == nil {
		return 0, errors.New(config.ErrRendererMissing)
	}
	data, today, err := s.renderer.Render(book)
	if err != nil {
		return 0, err
	}
	s.Publish(data)
	return today, nil
}

// Publish replaces the served document.
func (s *FeedServer) Publish(data []byte) {
	sum := sha256.Sum256(data)
	snap := &snapshot{
		body:         data,
		etag:         fmt.Sprintf(config.FormatETag, hex.EncodeToString(sum[:])),
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	}
	s.current.Store(snap)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, snap.etag,
	)
}

// Handler returns the HTTP handler serving the feed.
func (s *FeedServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.serveFeed)
	return mux
}

// Start listens on localhost and blocks until ctx is cancelled or the
// listener fails.
func (s *FeedServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	listenErr := make(chan error, config.ChannelBufferSize)
	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil
	case err := <-listenErr:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

func (s *FeedServer) serveFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	snap := s.current.Load()
	if snap == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	h := w.Header()
	h.Set(config.HeaderContentType, config.MimeTextCalendar)
	h.Set(config.HeaderXContentType, config.MimeNoSniff)
	h.Set(config.HeaderCacheControl, config.CacheControlPrivate)
	h.Set(config.HeaderETag, snap.etag)
	h.Set(config.HeaderLastModified, snap.lastModified)

	if notModified(r, snap) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(snap.body)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// notModified evaluates If-None-Match, then If-Modified-Since.
func notModified(r *http.Request, snap *snapshot) bool {
	if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
		return match == snap.etag
	}
	since := r.Header.Get(config.HeaderIfModifiedSince)
	if since == "" {
		return false
	}
	clientTime, err := time.Parse(http.TimeFormat, since)
	if err != nil {
		return false
	}
	serverTime, err := time.Parse(http.TimeFormat, snap.lastModified)
	if err != nil {
		return false
	}
	return !serverTime.After(clientTime)
}
