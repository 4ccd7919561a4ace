// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/naka-gawa/candidate-stats/internal/domain"
	"github.com/sirupsen/logrus"
)

// maxUploadMemory bounds the multipart form kept in memory; larger parts spill to disk.
const maxUploadMemory = 32 << 20

// Submitter starts a pipeline run without waiting for it.
type Submitter interface {
	Submit(ctx context.Context, req domain.ProfileRequest) string
}

// ResumeSaver persists an uploaded resume and returns its reference.
type ResumeSaver interface {
	Save(filename string, r io.Reader) (string, error)
}

// Server handles the inbound HTTP surface.
type Server struct {
	pipeline Submitter
	resumes  ResumeSaver
	logger   logrus.FieldLogger
}

// New creates a Server.
func New(pipeline Submitter, resumes ResumeSaver, logger logrus.FieldLogger) *Server {
	return &Server{pipeline: pipeline, resumes: resumes, logger: logger}
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /user/details", s.handleUserDetails)
	return s.logRequests(mux)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "candidate-stats backend running")
}

// handleUserDetails accepts a profile URL and an optional resume file. The aggregation runs
// in the background; the caller only learns that the request was accepted.
func (s *Server) handleUserDetails(w http.ResponseWriter, r *http.Request) {
	log := s.logger.WithField("stage", "http")
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		log.WithError(err).Warn("unreadable form")
		writeMessage(w, http.StatusBadRequest, "invalid form data")
		return
	}

	req := domain.ProfileRequest{ProfileURL: r.FormValue("githubUrl")}
	if err := req.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, "githubUrl required")
		return
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		ref, err := s.resumes.Save(header.Filename, file)
		if err != nil {
			log.WithError(err).Error("failed to store resume")
			writeMessage(w, http.StatusInternalServerError, "failed to store resume")
			return
		}
		req.ResumeReference = ref
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		log.WithError(err).Warn("unreadable file part")
		writeMessage(w, http.StatusBadRequest, "invalid file upload")
		return
	}

	runID := s.pipeline.Submit(r.Context(), req)
	log.WithFields(logrus.Fields{"run_id": runID, "profile_url": req.ProfileURL, "resume": req.ResumeReference}).Info("profile request accepted")
	w.Header().Set("X-Request-Id", runID)
	w.WriteHeader(http.StatusOK)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.WithFields(logrus.Fields{
			"stage":    "http",
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request served")
	})
}
