package api

import (
	"net/http"
)

// handleSetAPIKey installs the completion API key. The key is held in memory
// only and must be re-installed after a restart.
func (s *Server) handleSetAPIKey(w http.ResponseWriter, r *http.Request) {
	var req SetAPIKeyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.APIKey == "" {
		sendError(w, "API key cannot be empty", http.StatusBadRequest)
		return
	}
	s.client.SetAPIKey(req.APIKey)
	s.logger.Info("completion API key updated")
	sendSuccess(w, map[string]string{"status": "api key updated"})
}

// handleClearStorage wipes every partition
func (s *Server) handleClearStorage(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearAll(); err != nil {
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	sendSuccess(w, map[string]string{"status": "storage cleared"})
}

// handleClearChat wipes chat sessions and messages only
func (s *Server) handleClearChat(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearChat(); err != nil {
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	sendSuccess(w, map[string]string{"status": "chat storage cleared"})
}

// handleStats reports live record counts and refreshes the record gauges
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.RecordCounts()
	if err != nil {
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}

	stats := StatsResponse{
		Users:        counts["users"],
		Education:    counts["education"],
		Bank:         counts["bank"],
		CVs:          counts["cvs"],
		ChatSessions: counts["chat_sessions"],
		ChatMessages: counts["chat_messages"],
	}
	for name, n := range counts {
		s.metrics.UpdateRecordCount(name, n)
	}
	sendSuccess(w, stats)
}
