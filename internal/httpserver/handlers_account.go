package httpserver

import (
	"net/http"
	"strings"

	"github.com/adboardhq/adboard/internal/models"
)

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var in models.AccountInput
		if !s.decodeJSON(w, r, &in) {
			return
		}
		account, err := s.accountService.Create(r.Context(), id.UserID, in)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, http.StatusCreated, "account created", account)

	case http.MethodGet:
		filter := models.AccountFilter{
			Platform: r.URL.Query().Get("platform"),
			Status:   r.URL.Query().Get("status"),
		}
		page := parsePage(r)
		accounts, total, err := s.accountService.List(r.Context(), id.UserID, filter, page)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, http.StatusOK, "ok", newListPayload(accounts, total, page.Number, page.Size))

	default:
		s.methodNotAllowed(w)
	}
}

// handleAccountByID routes /api/ad-account/auth/url, /:id/sync, and the
// plain /:id detail operations.
func (s *Server) handleAccountByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/ad-account/")
	if rest == "" {
		http.NotFound(w, r)
		return
	}

	if rest == "auth/url" {
		s.handleAccountAuthURL(w, r)
		return
	}
	if accountID, found := strings.CutSuffix(rest, "/sync"); found && !strings.Contains(accountID, "/") {
		s.handleAccountSync(w, r, accountID)
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
		account, err := s.accountService.Get(r.Context(), id.UserID, rest)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, http.StatusOK, "ok", account)

	case http.MethodPut:
		var upd models.AccountUpdate
		if !s.decodeJSON(w, r, &upd) {
			return
		}
		account, err := s.accountService.Update(r.Context(), id.UserID, rest, upd)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, http.StatusOK, "account updated", account)

	case http.MethodDelete:
		if err := s.accountService.Delete(r.Context(), id.UserID, rest); err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, http.StatusOK, "account deleted", nil)

	default:
		s.methodNotAllowed(w)
	}
}

func (s *Server) handleAccountAuthURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	if _, ok := s.identity(w, r); !ok {
		return
	}

	platform := r.URL.Query().Get("platform")
	if platform == "" {
		s.badRequest(w, "platform is required")
		return
	}
	url, err := s.accountService.AuthURL(r.Context(), platform)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "ok", map[string]string{"url": url})
}

func (s *Server) handleAccountSync(w http.ResponseWriter, r *http.Request, accountID string) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	account, err := s.accountService.Sync(r.Context(), id.UserID, accountID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "account synced", account)
}
