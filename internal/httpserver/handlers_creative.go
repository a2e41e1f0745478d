package httpserver

import (
	"net/http"
	"strings"

	"github.com/adboardhq/adboard/internal/models"
)

func (s *Server) handleCreatives(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var in models.CreativeInput
		if !s.decodeJSON(w, r, &in) {
			return
		}
		creative, err := s.creativeService.Create(r.Context(), id.UserID, in)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, http.StatusCreated, "creative created", creative)

	case http.MethodGet:
		filter := models.CreativeFilter{
			PlanID: r.URL.Query().Get("planId"),
			Status: r.URL.Query().Get("status"),
		}
		page := parsePage(r)
		creatives, total, err := s.creativeService.List(r.Context(), id.UserID, filter, page)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, http.StatusOK, "ok", newListPayload(creatives, total, page.Number, page.Size))

	default:
		s.methodNotAllowed(w)
	}
}

func (s *Server) handleCreativeByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/ad-creative/")
	if rest == "" || rest == "upload" || strings.Contains(rest, "/") {
		http.NotFound(w, r)
		return
	}

	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		creative, err := s.creativeService.Get(r.Context(), id.UserID, rest)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, http.StatusOK, "ok", creative)

	case http.MethodPut:
		var upd models.CreativeUpdate
		if !s.decodeJSON(w, r, &upd) {
			return
		}
		creative, err := s.creativeService.Update(r.Context(), id.UserID, rest, upd)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, http.StatusOK, "creative updated", creative)

	case http.MethodDelete:
		if err := s.creativeService.Delete(r.Context(), id.UserID, rest); err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, http.StatusOK, "creative deleted", nil)

	default:
		s.methodNotAllowed(w)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}
	if _, ok := s.identity(w, r); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.uploadService.MaxBytes()+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.badRequest(w, "failed to parse form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.badRequest(w, "file field missing")
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	result, err := s.uploadService.Save(header.Filename, mimeType, header.Size, file)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "uploaded", result)
}
