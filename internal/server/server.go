// Package server serves the ShareBox page, its browser assets and the JSON
// endpoints the page controller and sharectl talk to.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Its-donkey/sharebox/internal/auth"
	"github.com/Its-donkey/sharebox/internal/ui/model"
	"github.com/Its-donkey/sharebox/logging"
)

const (
	defaultCookieName   = "sharebox_session"
	flashCookieName     = "sharebox_flash"
	defaultPruneEvery   = time.Hour
	multipartOverhead   = 1 << 20
	defaultShutdownWait = 10 * time.Second
)

// FileStore is the subset of files.Store behaviour the handlers need.
type FileStore interface {
	List() ([]model.FileInfo, error)
	Save(name string, r io.Reader) (string, error)
	Delete(name string) error
	Open(name string) (*os.File, os.FileInfo, error)
}

// TextStore holds the single shared text.
type TextStore interface {
	Get() (string, error)
	Set(content string) (string, error)
}

// Authenticator issues and checks session tokens.
type Authenticator interface {
	Login(ctx context.Context, password string) (auth.Session, error)
	Validate(ctx context.Context, token string) (auth.Session, error)
	Logout(ctx context.Context, token string) error
	Prune(ctx context.Context) (int, error)
}

// Options configures the HTTP server.
type Options struct {
	Listen          string
	AssetsDir       string
	CORSOrigins     []string
	CookieName      string
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
	PruneInterval   time.Duration

	Files  FileStore
	Text   TextStore
	Auth   Authenticator
	Signer *auth.Signer
	// Live is mounted at /ws when set.
	Live   http.Handler
	Logger *logging.Logger
}

// Server is the ShareBox HTTP server.
type Server struct {
	opts       Options
	files      FileStore
	text       TextStore
	auth       Authenticator
	signer     *auth.Signer
	logger     *logging.Logger
	templates  map[string]*template.Template
	router     chi.Router
	httpServer *http.Server
}

// New validates opts and builds the router.
func New(opts Options) (*Server, error) {
	if opts.Files == nil || opts.Text == nil || opts.Auth == nil {
		return nil, errors.New("server: file store, text store and authenticator are required")
	}
	if opts.CookieName == "" {
		opts.CookieName = defaultCookieName
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = model.DefaultMaxUploadBytes
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownWait
	}
	if opts.PruneInterval <= 0 {
		opts.PruneInterval = defaultPruneEvery
	}
	if opts.Signer == nil {
		opts.Signer = auth.NewSigner("")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:      opts,
		files:     opts.Files,
		text:      opts.Text,
		auth:      opts.Auth,
		signer:    opts.Signer,
		logger:    opts.Logger,
		templates: templates,
	}
	s.router = s.buildRouter()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(logging.NewHTTPLogger(s.logger).Middleware)
	r.Use(middleware.Recoverer)

	if len(s.opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/static/*", staticHandler())
	r.Get("/wasm_exec.js", s.assetHandler("wasm_exec.js", "application/javascript"))
	r.Get("/main.wasm", s.assetHandler("main.wasm", "application/wasm"))
	r.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLogin)
	r.Get("/logout", s.handleLogout)
	r.Post("/logout", s.handleLogout)

	r.With(s.requirePageSession("")).Get("/", s.handleIndex)
	r.With(s.requirePageSession(msgLoginRequired)).Get("/download/{filename}", s.handleDownload)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAPISession)
		r.Post("/upload", s.handleUpload)
		r.Post("/delete/{filename}", s.handleDelete)
		r.Get("/files", s.handleFiles)
		r.Post("/share_text", s.handleShareText)
		r.Get("/get_text", s.handleGetText)
		if s.opts.Live != nil {
			r.Handle("/ws", s.opts.Live)
		}
	})

	return r
}

// assetHandler serves a built browser asset from the assets directory.
func (s *Server) assetHandler(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(s.opts.AssetsDir, name)
		if _, err := os.Stat(path); err != nil {
			http.NotFound(w, r)
			return
		}
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, path)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.opts.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	pruneCtx, stopPrune := context.WithCancel(ctx)
	defer stopPrune()
	go s.pruneSessions(pruneCtx)

	s.logger.Info("server", "listening", map[string]any{"addr": s.opts.Listen})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server shutdown: %w", err)
		}
		s.logger.Info("server", "stopped", nil)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}

func (s *Server) pruneSessions(ctx context.Context) {
	ticker := time.NewTicker(s.opts.PruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.auth.Prune(ctx)
			if err != nil {
				s.logger.Error("auth", "pruning sessions failed", err, nil)
				continue
			}
			if n > 0 {
				s.logger.Info("auth", "pruned expired sessions", map[string]any{"count": n})
			}
		}
	}
}
