package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/Its-donkey/sharebox/internal/files"
	"github.com/Its-donkey/sharebox/internal/ui/model"
	"github.com/Its-donkey/sharebox/internal/ui/state"
	"github.com/Its-donkey/sharebox/logging"
)

const (
	msgNoFile       = "No file selected"
	msgFileNotFound = "File not found"
	msgInvalidName  = "Invalid file name"
	msgListFailed   = "Could not read the shared folder"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	log := s.logger.WithRequestID(logging.RequestIDFromContext(r.Context())).WithCategory("files")
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, msgNoFile)
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, msgNoFile)
			return
		}
		if err != nil {
			s.uploadFailed(w, log, err)
			return
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}
		if part.FileName() == "" {
			part.Close()
			writeError(w, http.StatusBadRequest, msgNoFile)
			return
		}

		stored, err := s.files.Save(part.FileName(), part)
		part.Close()
		if err != nil {
			s.uploadFailed(w, log, err)
			return
		}
		log.WithField("name", stored).Info("file uploaded")
		writeJSON(w, http.StatusOK, model.UploadResponse{
			Envelope: model.Envelope{Success: true, Message: fmt.Sprintf("File %s uploaded", stored)},
			Filename: stored,
		})
		return
	}
}

func (s *Server) uploadFailed(w http.ResponseWriter, log *logging.LogContext, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, files.ErrTooLarge), errors.As(err, &maxErr):
		log.Warn("upload rejected: too large")
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File exceeds the %s limit", state.LimitLabel(s.opts.MaxUploadBytes)))
	case errors.Is(err, files.ErrInvalidName):
		writeError(w, http.StatusBadRequest, msgInvalidName)
	default:
		log.Error("upload failed", err)
		writeError(w, http.StatusInternalServerError, "Upload failed, please try again")
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name, ok := pathParam(r, "filename")
	if !ok {
		http.Error(w, msgFileNotFound, http.StatusNotFound)
		return
	}
	f, info, err := s.files.Open(name)
	if err != nil {
		if errors.Is(err, files.ErrNotFound) || errors.Is(err, files.ErrInvalidName) {
			http.Error(w, msgFileNotFound, http.StatusNotFound)
			return
		}
		s.logger.Error("files", "open for download failed", err, map[string]any{
			"name":       name,
			"request_id": logging.RequestIDFromContext(r.Context()),
		})
		http.Error(w, "Download failed", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	log := s.logger.WithRequestID(logging.RequestIDFromContext(r.Context())).WithCategory("files")
	name, ok := pathParam(r, "filename")
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidName)
		return
	}
	if err := s.files.Delete(name); err != nil {
		switch {
		case errors.Is(err, files.ErrNotFound):
			writeError(w, http.StatusNotFound, msgFileNotFound)
		case errors.Is(err, files.ErrInvalidName):
			writeError(w, http.StatusBadRequest, msgInvalidName)
		default:
			log.WithField("name", name).Error("delete failed", err)
			writeError(w, http.StatusInternalServerError, "Delete failed, please try again")
		}
		return
	}
	log.WithField("name", name).Info("file deleted")
	writeOK(w, fmt.Sprintf("File %s deleted", name))
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	list, err := s.files.List()
	if err != nil {
		s.logger.Error("files", "listing failed", err, map[string]any{
			"request_id": logging.RequestIDFromContext(r.Context()),
		})
		writeError(w, http.StatusInternalServerError, msgListFailed)
		return
	}
	if list == nil {
		list = []model.FileInfo{}
	}
	writeJSON(w, http.StatusOK, model.ListResponse{Envelope: model.Envelope{Success: true}, Files: list})
}

// pathParam returns the decoded route parameter. chi matches on the raw
// path when the request needed escaping, so the value may still be encoded.
func pathParam(r *http.Request, key string) (string, bool) {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value, value != ""
	}
	decoded, err := url.PathUnescape(value)
	if err != nil || decoded == "" {
		return "", false
	}
	return decoded, true
}
