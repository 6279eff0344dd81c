package api

import (
	"github.com/go-json-experiment/json"
	"net/http"
	"strconv"

	"github.com/coverscafe/covers-server/internal/http/response"
	"github.com/coverscafe/covers-server/internal/identity"
)

type mergeRequest struct {
	ArtistNames   []string `json:"artist_names" validate:"required,min=1,dive,min=1"`
	CanonicalName string   `json:"canonical_name" validate:"required,min=1"`
}

// handleMergeArtists serves POST /api/v1/artists/merge.
// Returns the alias rows now in effect plus a one-shot undo token valid
// until expires_at.
func (s *Server) handleMergeArtists(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		response.BadRequest(w, "artist_names and canonical_name are required", s.logger)
		return
	}

	result, err := s.identityService.Merge(r.Context(), req.ArtistNames, req.CanonicalName)
	if err != nil {
		response.DomainError(w, err, s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

type undoRequest struct {
	Token string `json:"token" validate:"required,min=1"`
}

// handleUndoMerge serves POST /api/v1/artists/merge/undo.
// 204 on success; 410 once the undo window has closed or the token is spent.
func (s *Server) handleUndoMerge(w http.ResponseWriter, r *http.Request) {
	var req undoRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		response.BadRequest(w, "token is required", s.logger)
		return
	}

	if err := s.identityService.Undo(r.Context(), req.Token); err != nil {
		response.DomainError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleMergeSuggestions serves GET /api/v1/artists/suggestions.
// Optional threshold query param (0..1) tightens or loosens the similarity
// cut-off.
func (s *Server) handleMergeSuggestions(w http.ResponseWriter, r *http.Request) {
	threshold := 0.0
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			response.BadRequest(w, "threshold must be a number between 0 and 1", s.logger)
			return
		}
		threshold = parsed
	}

	suggestions, err := s.identityService.Suggestions(r.Context(), threshold)
	if err != nil {
		response.DomainError(w, err, s.logger)
		return
	}
	if suggestions == nil {
		suggestions = []identity.Suggestion{}
	}

	response.Success(w, map[string]any{
		"suggestions": suggestions,
		"count":       len(suggestions),
	}, s.logger)
}
