package server

import (
	"errors"
	"net/http"

	"github.com/Its-donkey/sharebox/internal/sharedtext"
	"github.com/Its-donkey/sharebox/internal/ui/model"
	"github.com/Its-donkey/sharebox/logging"
)

func (s *Server) handleShareText(w http.ResponseWriter, r *http.Request) {
	log := s.logger.WithRequestID(logging.RequestIDFromContext(r.Context())).WithCategory("text")
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form submission")
		return
	}
	content, err := s.text.Set(r.PostFormValue("content"))
	if err != nil {
		if errors.Is(err, sharedtext.ErrEmpty) {
			writeError(w, http.StatusBadRequest, "Text cannot be empty")
			return
		}
		log.Error("saving shared text failed", err)
		writeError(w, http.StatusInternalServerError, "Sharing failed, please try again")
		return
	}
	log.WithField("length", len(content)).Info("text shared")
	writeOK(w, "Text shared")
}

func (s *Server) handleGetText(w http.ResponseWriter, r *http.Request) {
	content, err := s.text.Get()
	if err != nil {
		s.logger.Error("text", "reading shared text failed", err, map[string]any{
			"request_id": logging.RequestIDFromContext(r.Context()),
		})
		writeError(w, http.StatusInternalServerError, "Could not read the shared text")
		return
	}
	writeJSON(w, http.StatusOK, model.TextResponse{Envelope: model.Envelope{Success: true}, Content: content})
}
