package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Its-donkey/sharebox/internal/auth"
	"github.com/Its-donkey/sharebox/internal/ui/model"
)

const (
	msgLoginRequired      = "Please log in first"
	msgSessionUnavailable = "Session check failed, please try again"
)

// flash is a one-shot message carried across a redirect.
type flash struct {
	Category string
	Message  string
}

func (s *Server) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(s.opts.CookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

// loggedIn reports whether the request carries a live session. Store failures
// are returned as errors rather than treated as a missing session.
func (s *Server) loggedIn(r *http.Request) (bool, error) {
	token := s.sessionToken(r)
	if token == "" {
		return false, nil
	}
	_, err := s.auth.Validate(r.Context(), token)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, auth.ErrSessionNotFound):
		return false, nil
	default:
		s.logger.Error("auth", "session lookup failed", err, map[string]any{"path": r.URL.Path})
		return false, err
	}
}

// requirePageSession redirects anonymous visitors to the login page. A
// non-empty flashMsg is shown there.
func (s *Server) requirePageSession(flashMsg string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := s.loggedIn(r)
			if err != nil {
				http.Error(w, msgSessionUnavailable, http.StatusInternalServerError)
				return
			}
			if !ok {
				if flashMsg != "" {
					s.setFlash(w, r, model.ToastError, flashMsg)
				}
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAPISession answers anonymous API calls with a 401 envelope.
func (s *Server) requireAPISession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, err := s.loggedIn(r)
		if err != nil {
			writeError(w, http.StatusInternalServerError, msgSessionUnavailable)
			return
		}
		if !ok {
			writeError(w, http.StatusUnauthorized, msgLoginRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isSecure(r *http.Request) bool {
	return r != nil && (r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https"))
}

func (s *Server) setSession(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	cookie := &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    sess.Token,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   isSecure(r),
		Path:     "/",
	}
	if !sess.ExpiresAt.IsZero() {
		cookie.Expires = sess.ExpiresAt
	} else {
		// Permanent sessions outlive the browser session.
		cookie.MaxAge = 10 * 365 * 24 * 60 * 60
	}
	http.SetCookie(w, cookie)
}

func (s *Server) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func (s *Server) setFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    s.signer.Sign(category + "|" + message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   isSecure(r),
	})
}

// popFlash returns and clears the pending flash, if any.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	raw, err := s.signer.Verify(cookie.Value)
	if err != nil {
		return nil
	}
	category, message, ok := strings.Cut(raw, "|")
	if !ok || message == "" {
		return nil
	}
	return &flash{Category: category, Message: message}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}
