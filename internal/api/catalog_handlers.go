package api

import (
	"github.com/go-json-experiment/json"
	"net/http"
	"strings"

	"github.com/coverscafe/covers-server/internal/domain"
	"github.com/coverscafe/covers-server/internal/http/response"
)

// handleSearchCatalog serves GET /api/v1/catalog/search.
// Query params: artist (required), album, territories (comma-separated
// override of the configured preference order).
func (s *Server) handleSearchCatalog(w http.ResponseWriter, r *http.Request) {
	artist := r.URL.Query().Get("artist")
	album := r.URL.Query().Get("album")

	var territories []string
	if raw := r.URL.Query().Get("territories"); raw != "" {
		territories = strings.Split(raw, ",")
	}

	entries, err := s.catalogService.Search(r.Context(), artist, album, territories)
	if err != nil {
		response.DomainError(w, err, s.logger)
		return
	}
	if entries == nil {
		entries = []domain.CatalogEntry{}
	}

	response.Success(w, map[string]any{
		"rows":  entries,
		"count": len(entries),
	}, s.logger)
}

type mirrorRequest struct {
	Rows []domain.CatalogEntry `json:"rows" validate:"required,min=1"`
}

// handleMirrorCatalog serves POST /api/v1/catalog/mirror.
// Copies the posted catalog entries into the covers table so they gain
// stable public permalinks.
func (s *Server) handleMirrorCatalog(w http.ResponseWriter, r *http.Request) {
	var req mirrorRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		response.BadRequest(w, "At least one row is required", s.logger)
		return
	}

	covers, err := s.catalogService.Mirror(r.Context(), req.Rows)
	if err != nil {
		response.DomainError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"covers": covers,
		"count":  len(covers),
	}, s.logger)
}
