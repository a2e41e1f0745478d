package httpserver

import (
	"net/http"

	"github.com/adboardhq/adboard/internal/ads"
)

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	q := ads.StatsQuery{
		TimeRange: r.URL.Query().Get("timeRange"),
		Platform:  r.URL.Query().Get("platform"),
		PlanID:    r.URL.Query().Get("planId"),
	}
	stats, err := s.statsService.GetStatistics(r.Context(), id.UserID, q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "ok", stats)
}
