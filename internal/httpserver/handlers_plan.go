package httpserver

import (
	"net/http"
	"strings"

	"github.com/adboardhq/adboard/internal/models"
)

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var in models.PlanInput
		if !s.decodeJSON(w, r, &in) {
			return
		}
		plan, err := s.planService.Create(r.Context(), id.UserID, in)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, http.StatusCreated, "plan created", plan)

	case http.MethodGet:
		filter := models.PlanFilter{
			Platform:  r.URL.Query().Get("platform"),
			Status:    r.URL.Query().Get("status"),
			AccountID: r.URL.Query().Get("accountId"),
		}
		page := parsePage(r)
		plans, total, err := s.planService.List(r.Context(), id.UserID, filter, page)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, http.StatusOK, "ok", newListPayload(plans, total, page.Number, page.Size))

	default:
		s.methodNotAllowed(w)
	}
}

// handlePlanByID routes /api/ad-plan/batch/status, /batch/delete, and
// the plain /:id detail operations.
func (s *Server) handlePlanByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/ad-plan/")
	if rest == "" {
		http.NotFound(w, r)
		return
	}

	switch rest {
	case "batch/status":
		s.handlePlanBatchStatus(w, r)
		return
	case "batch/delete":
		s.handlePlanBatchDelete(w, r)
		return
	}
	if strings.Contains(rest, "/") {
		http.NotFound(w, r)
		return
	}

	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		plan, err := s.planService.Get(r.Context(), id.UserID, rest)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, http.StatusOK, "ok", plan)

	case http.MethodPut:
		var upd models.PlanUpdate
		if !s.decodeJSON(w, r, &upd) {
			return
		}
		plan, err := s.planService.Update(r.Context(), id.UserID, rest, upd)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, http.StatusOK, "plan updated", plan)

	case http.MethodDelete:
		if err := s.planService.Delete(r.Context(), id.UserID, rest); err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, http.StatusOK, "plan deleted", nil)

	default:
		s.methodNotAllowed(w)
	}
}

func (s *Server) handlePlanBatchStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	var in models.BatchStatusInput
	if !s.decodeJSON(w, r, &in) {
		return
	}
	updated, err := s.planService.BatchUpdateStatus(r.Context(), id.UserID, in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "plans updated", map[string]int64{"updated": updated})
}

func (s *Server) handlePlanBatchDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	var in models.BatchDeleteInput
	if !s.decodeJSON(w, r, &in) {
		return
	}
	deleted, err := s.planService.BatchDelete(r.Context(), id.UserID, in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "plans deleted", map[string]int64{"deleted": deleted})
}
