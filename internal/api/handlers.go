package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/rolodex/internal/extractor"
	"github.com/MikeSquared-Agency/rolodex/internal/insights"
	"github.com/MikeSquared-Agency/rolodex/internal/processor"
	"github.com/MikeSquared-Agency/rolodex/internal/record"
	"github.com/MikeSquared-Agency/rolodex/internal/session"
)

type ExtractRequest struct {
	Text      string `json:"text"`
	Source    string `json:"source"`
	SessionID string `json:"session_id,omitempty"`
}

type SaveRequest struct {
	SessionID string `json:"session_id"`
}

type AskRequest struct {
	Question string `json:"question"`
}

type ListResponse struct {
	Records []record.Stored `json:"records"`
	Count   int             `json:"count"`
}

// extract handles POST /api/v1/extract
func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if !decodeBody(w, r, &req) {
		return
	}
	source, err := extractor.ParseSource(req.Source)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.proc.Extract(r.Context(), req.SessionID, source, req.Text)
	if err != nil {
		s.fail(w, "extraction failed", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// maxAudioBytes matches the whisper API's upload limit.
const maxAudioBytes = 25 << 20

// voice handles POST /api/v1/voice as a multipart upload with an "audio"
// file and an optional "session_id" field.
func (s *Server) voice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes+1<<20)
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid upload: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	path, err := saveUpload(file, header.Filename)
	if err != nil {
		s.fail(w, "voice upload failed", err)
		return
	}
	defer os.Remove(path)

	res, err := s.proc.Voice(r.Context(), r.FormValue("session_id"), path)
	if err != nil {
		s.fail(w, "voice extraction failed", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// saveUpload copies an uploaded audio file to a temp file. Only a known
// audio extension from the client's filename is kept.
func saveUpload(src io.Reader, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "rolodex-voice-*"+audioExt(filename))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close upload: %w", err)
	}
	return tmp.Name(), nil
}

func audioExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".flac", ".m4a", ".mp3", ".mp4", ".mpeg", ".mpga", ".oga", ".ogg", ".wav", ".webm":
		return ext
	}
	return ""
}

// pending handles GET /api/v1/sessions/{id}
func (s *Server) pending(w http.ResponseWriter, r *http.Request) {
	p, err := s.proc.Pending(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "lookup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// save handles POST /api/v1/records
func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	res, err := s.proc.Save(r.Context(), req.SessionID)
	if err != nil {
		s.fail(w, "save failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// list handles GET /api/v1/records
func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	records, err := s.proc.List(r.Context())
	if err != nil {
		s.fail(w, "list failed", err)
		return
	}
	if records == nil {
		records = []record.Stored{}
	}
	writeJSON(w, http.StatusOK, ListResponse{Records: records, Count: len(records)})
}

// insights handles GET /api/v1/insights
func (s *Server) insights(w http.ResponseWriter, r *http.Request) {
	rep, err := s.proc.Insights(r.Context())
	if err != nil {
		s.fail(w, "insights failed", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// summary handles POST /api/v1/insights/summary
func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	text, err := s.proc.Summary(r.Context())
	if err != nil {
		s.fail(w, "summary failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": text})
}

// ask handles POST /api/v1/insights/ask
func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	answer, err := s.proc.Ask(r.Context(), req.Question)
	if err != nil {
		s.fail(w, "question failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return false
	}
	return true
}

// fail maps pipeline errors onto HTTP status codes.
func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, session.ErrNoPending), errors.Is(err, insights.ErrNoRecords):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, insights.ErrEmptyQuestion):
		writeError(w, http.StatusBadRequest, err.Error())
	case processor.IsServiceError(err):
		s.logger.Error(msg, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error(msg, "error", err)
		writeError(w, http.StatusInternalServerError, msg)
	}
}
