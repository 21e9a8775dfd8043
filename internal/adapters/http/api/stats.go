package api

import "net/http"

// HandleStats handles GET /stats.
func (s *Server) HandleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.GetStats())
}
