package httpserver

import (
	"net/http"
	"strings"

	"github.com/adboardhq/adboard/internal/models"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}

	var in models.RegisterInput
	if !s.decodeJSON(w, r, &in) {
		return
	}

	user, err := s.userService.Register(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if s.metrics != nil {
		s.metrics.Registrations.Inc()
	}
	s.respond(w, http.StatusCreated, "registered", user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}

	var in models.LoginInput
	if !s.decodeJSON(w, r, &in) {
		return
	}

	token, user, err := s.userService.Login(r.Context(), in)
	if err != nil {
		if s.metrics != nil {
			s.metrics.Logins.WithLabelValues("failure").Inc()
		}
		s.fail(w, r, err)
		return
	}

	if s.metrics != nil {
		s.metrics.Logins.WithLabelValues("success").Inc()
	}
	s.respond(w, http.StatusOK, "logged in", map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (s *Server) handleCheckEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email")))
	if email == "" {
		s.badRequest(w, "email is required")
		return
	}

	user, err := s.userService.CheckEmail(r.Context(), email)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data := map[string]interface{}{
		"exists": user != nil,
		"email":  email,
	}
	if user != nil {
		data["user"] = map[string]string{
			"id":       user.ID,
			"username": user.Username,
			"avatar":   user.Avatar,
		}
	}
	s.respond(w, http.StatusOK, "ok", data)
}

func (s *Server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := s.userService.GetProfile(r.Context(), id.UserID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, http.StatusOK, "ok", user)

	case http.MethodPut:
		var upd models.UserUpdate
		if !s.decodeJSON(w, r, &upd) {
			return
		}
		user, err := s.userService.UpdateProfile(r.Context(), id.UserID, upd)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.respond(w, http.StatusOK, "updated", user)

	default:
		s.methodNotAllowed(w)
	}
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		s.methodNotAllowed(w)
		return
	}
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	var in models.ChangePasswordInput
	if !s.decodeJSON(w, r, &in) {
		return
	}
	if err := s.userService.ChangePassword(r.Context(), id.UserID, in); err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "password changed", nil)
}
