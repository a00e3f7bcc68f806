package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
)

// handleValidateArticles handles POST /api/validate/article. A JSON object is
// validated on its own and answered with a Result; a JSON array is validated
// as a batch and answered with a BatchResult.
func (s *Server) handleValidateArticles(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		s.respondError(w, http.StatusBadRequest, "Request body is required")
		return
	}

	if trimmed[0] == '[' {
		var articles []core.Article
		if err := json.Unmarshal(trimmed, &articles); err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid articles: "+err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, s.validator.BatchValidateArticles(articles))
		return
	}

	var article core.Article
	if err := json.Unmarshal(trimmed, &article); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid article: "+err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, s.validator.ValidateArticle(article))
}

// handleValidateUser handles POST /api/validate/user
func (s *Server) handleValidateUser(w http.ResponseWriter, r *http.Request) {
	var user core.User
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&user); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid user: "+err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, s.validator.ValidateUser(user))
}
