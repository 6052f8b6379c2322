package server

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/Its-donkey/sharebox/internal/auth"
	"github.com/Its-donkey/sharebox/internal/ui/model"
	"github.com/Its-donkey/sharebox/internal/ui/render"
	"github.com/Its-donkey/sharebox/logging"
)

const (
	msgWrongPassword = "Wrong password, please try again"
	msgLoggedIn      = "Logged in"
	msgLoggedOut     = "Logged out"
)

type pageData struct {
	Title    string
	LoggedIn bool
	Flash    *flash
}

type indexPageData struct {
	pageData
	FileList template.HTML
	MaxBytes int64
	Text     string
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	tmpl, ok := s.templates[name]
	if !ok {
		http.Error(w, "template missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		s.logger.Error("render", "template execution failed", err, map[string]any{
			"template":   name,
			"request_id": logging.RequestIDFromContext(r.Context()),
		})
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	log := s.logger.WithRequestID(logging.RequestIDFromContext(r.Context())).WithCategory("page")

	list, err := s.files.List()
	if err != nil {
		log.Error("listing files failed", err)
		list = nil
	}
	text, err := s.text.Get()
	if err != nil {
		log.Error("reading shared text failed", err)
	}

	s.render(w, r, http.StatusOK, "index", indexPageData{
		pageData: pageData{Title: "ShareBox", LoggedIn: true, Flash: s.popFlash(w, r)},
		// render escapes every interpolated field.
		FileList: template.HTML(render.FileList(list)),
		MaxBytes: s.opts.MaxUploadBytes,
		Text:     text,
	})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if ok, _ := s.loggedIn(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login", pageData{Title: "ShareBox · Log in", Flash: s.popFlash(w, r)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	log := s.logger.WithRequestID(logging.RequestIDFromContext(r.Context())).WithCategory("auth")
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form submission")
		return
	}

	sess, err := s.auth.Login(r.Context(), r.PostFormValue("password"))
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidPassword) {
			log.Error("login failed", err)
			writeError(w, http.StatusInternalServerError, "Login failed, please try again")
			return
		}
		log.WithField("remote", r.RemoteAddr).Warn("login rejected")
		if wantsJSON(r) {
			writeError(w, http.StatusUnauthorized, msgWrongPassword)
			return
		}
		s.render(w, r, http.StatusUnauthorized, "login", pageData{
			Title: "ShareBox · Log in",
			Flash: &flash{Category: model.ToastError, Message: msgWrongPassword},
		})
		return
	}

	s.setSession(w, r, sess)
	log.WithField("remote", r.RemoteAddr).Info("login successful")
	if wantsJSON(r) {
		writeOK(w, msgLoggedIn)
		return
	}
	s.setFlash(w, r, model.ToastSuccess, msgLoggedIn)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := s.sessionToken(r); token != "" {
		if err := s.auth.Logout(r.Context(), token); err != nil {
			s.logger.Error("auth", "logout failed", err, map[string]any{
				"request_id": logging.RequestIDFromContext(r.Context()),
			})
		}
	}
	s.clearSession(w)
	if wantsJSON(r) {
		writeOK(w, msgLoggedOut)
		return
	}
	s.setFlash(w, r, model.ToastSuccess, msgLoggedOut)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
