package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/pipeline"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/store"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
	maxBodyBytes     = 4 << 20
)

// HealthResponse is returned by /health
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// StatusResponse is returned by /api/status
type StatusResponse struct {
	Uptime   string      `json:"uptime"`
	Database StoreStatus `json:"database"`
}

// StoreStatus summarizes the digest store
type StoreStatus struct {
	Connected   bool      `json:"connected"`
	Driver      string    `json:"driver"`
	Digests     int       `json:"digests"`
	SizeBytes   int64     `json:"size_bytes"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// DigestListResponse is returned by GET /api/digests
type DigestListResponse struct {
	Digests []store.Summary `json:"digests"`
	Count   int             `json:"count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}

	if s.digests != nil {
		if _, err := s.digests.Stats(r.Context()); err != nil {
			checks["database"] = "error"
			s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Checks: checks})
			return
		}
		checks["database"] = "ok"
	}

	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Checks: checks})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Uptime: time.Since(s.started).Round(time.Second).String()}
	if s.digests != nil {
		if stats, err := s.digests.Stats(r.Context()); err == nil {
			resp.Database = StoreStatus{
				Connected:   true,
				Driver:      s.digests.Driver(),
				Digests:     stats.DigestCount,
				SizeBytes:   stats.Size,
				LastUpdated: stats.LastUpdated,
			}
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// handleRunDigestJob handles POST /api/jobs/digest. An empty body runs every
// field with default options.
func (s *Server) handleRunDigestJob(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		s.respondError(w, http.StatusServiceUnavailable, "Digest jobs are not configured")
		return
	}

	var opts pipeline.JobOptions
	body, err := readBody(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &opts); err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid job options: "+err.Error())
			return
		}
	}

	report, err := s.runner.Run(r.Context(), opts)
	if err != nil {
		if core.IsConfigurationError(err) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("Digest job failed", err, "field", opts.Field)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, report)
}

// handleListDigests handles GET /api/digests?field=&limit=
func (s *Server) handleListDigests(w http.ResponseWriter, r *http.Request) {
	if s.digests == nil {
		s.respondError(w, http.StatusServiceUnavailable, "Digest store is not configured")
		return
	}

	var field core.FieldID
	if raw := r.URL.Query().Get("field"); raw != "" {
		f, err := core.ParseField(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		field = f
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}

	digests, err := s.digests.ListDigests(r.Context(), field, limit)
	if err != nil {
		s.log.Error("Failed to list digests", err, "field", field)
		s.respondError(w, http.StatusInternalServerError, "Failed to list digests")
		return
	}
	if digests == nil {
		digests = []store.Summary{}
	}

	s.respondJSON(w, http.StatusOK, DigestListResponse{Digests: digests, Count: len(digests)})
}

// handleGetDigest handles GET /api/digests/{id}
func (s *Server) handleGetDigest(w http.ResponseWriter, r *http.Request) {
	if s.digests == nil {
		s.respondError(w, http.StatusServiceUnavailable, "Digest store is not configured")
		return
	}

	digestID := chi.URLParam(r, "id")
	rec, err := s.digests.GetDigest(r.Context(), digestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "Digest not found")
			return
		}
		s.log.Error("Failed to get digest", err, "id", digestID)
		s.respondError(w, http.StatusInternalServerError, "Failed to load digest")
		return
	}

	s.respondJSON(w, http.StatusOK, rec)
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, errors.New("failed to read request body")
	}
	if len(body) > maxBodyBytes {
		return nil, errors.New("request body too large")
	}
	return body, nil
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]any{
		"error": map[string]any{
			"status":  status,
			"message": message,
		},
	})
}
