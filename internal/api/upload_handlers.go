package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/coverscafe/covers-server/internal/http/response"
	"github.com/coverscafe/covers-server/internal/service"
)

// maxUploadSize bounds cover image uploads.
const maxUploadSize = 20 << 20 // 20MB

// readImageFile pulls the "image" file out of a multipart request.
func (s *Server) readImageFile(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.BadRequest(w, "Invalid multipart form or image too large", s.logger)
		return nil, false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		response.BadRequest(w, "image file is required", s.logger)
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "Failed to read image", s.logger)
		return nil, false
	}
	return data, true
}

// handleUploadCheck serves POST /api/v1/uploads/check.
// Fingerprints the posted image and reports whether an identical cover
// already exists, without storing anything.
func (s *Server) handleUploadCheck(w http.ResponseWriter, r *http.Request) {
	image, ok := s.readImageFile(w, r)
	if !ok {
		return
	}

	check, err := s.uploadService.CheckDuplicate(r.Context(), image)
	if err != nil {
		response.DomainError(w, err, s.logger)
		return
	}

	response.Success(w, check, s.logger)
}

// handleUpload serves POST /api/v1/uploads.
// Multipart form: image file plus title, artist, year, tags (comma
// separated), image_url, and public fields. 409 when an identical image is
// already in the library.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	image, ok := s.readImageFile(w, r)
	if !ok {
		return
	}

	req := service.UploadRequest{
		Title:    r.FormValue("title"),
		Artist:   r.FormValue("artist"),
		ImageURL: r.FormValue("image_url"),
		Image:    image,
	}
	if raw := r.FormValue("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "year must be a number", s.logger)
			return
		}
		req.Year = year
	}
	if raw := r.FormValue("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				req.Tags = append(req.Tags, tag)
			}
		}
	}
	req.Public = r.FormValue("public") == "true"

	cover, err := s.uploadService.Upload(r.Context(), req)
	if err != nil {
		response.DomainError(w, err, s.logger)
		return
	}

	response.Created(w, cover, s.logger)
}
