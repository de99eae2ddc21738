package web

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/dailyayah/dailyayah/internal/logging"
)

// authorized checks the admin bearer token. A server with no token
// configured refuses all admin requests.
func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.AdminToken == "" {
		return false
	}
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AdminToken)) == 1
}

// handleAdminReload forces a from-source rebuild, streaming stage events to
// any connected reload sockets.
func (s *Server) handleAdminReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "Only POST is allowed")
		return
	}
	if !s.authorized(r) {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	err := s.store.LoadWithProgress(ctx, true, func(stage, detail string) {
		s.hub.Broadcast(ReloadEvent{Type: "progress", Stage: stage, Detail: detail})
	})
	if err != nil {
		s.hub.Broadcast(ReloadEvent{Type: "error", Detail: err.Error()})
		logging.ErrorContext(r.Context(), "admin reload failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Broadcast(ReloadEvent{Type: "complete", Detail: s.store.DataHash()})
	logging.InfoContext(r.Context(), "admin reload complete",
		"verses", s.store.Len(), "duration", time.Since(start).String())
	writeJSON(w, http.StatusOK, map[string]any{
		"reloaded":  true,
		"verses":    s.store.Len(),
		"data_hash": s.store.DataHash(),
		"duration":  time.Since(start).String(),
	})
}

// handleReloadSocket upgrades to a websocket streaming reload progress.
func (s *Server) handleReloadSocket(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.hub.serve(w, r)
}
