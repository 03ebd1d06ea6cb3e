package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleStartChat opens a chat session on one of the caller's CVs
func (s *Server) handleStartChat(w http.ResponseWriter, r *http.Request) {
	var req ChatStartRequest
	if !decodeBody(w, r, &req) {
		return
	}

	welcome, err := s.chat.StartChat(r.Context(), callerID(r), req.CVID)
	if err != nil {
		s.metrics.RecordChatRequest("start", false)
		status := chatErrorStatus(err)
		if status == http.StatusTooManyRequests {
			s.metrics.RecordRateLimited()
		}
		sendError(w, err.Error(), status)
		return
	}
	s.metrics.RecordChatRequest("start", true)
	sendSuccess(w, welcome)
}

// handleSendMessage relays one user message and returns the assistant reply
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req ChatMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reply, err := s.chat.SendMessage(r.Context(), req.SessionID, callerID(r), req.Content)
	if err != nil {
		s.metrics.RecordChatRequest("message", false)
		status := chatErrorStatus(err)
		if status == http.StatusTooManyRequests {
			s.metrics.RecordRateLimited()
		}
		sendError(w, err.Error(), status)
		return
	}
	s.metrics.RecordChatRequest("message", true)
	sendSuccess(w, reply)
}

// handleChatHistory returns every message of one of the caller's sessions
func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.chat.History(chi.URLParam(r, "sessionID"), callerID(r))
	if err != nil {
		s.metrics.RecordChatRequest("history", false)
		sendError(w, err.Error(), chatErrorStatus(err))
		return
	}
	s.metrics.RecordChatRequest("history", true)
	sendSuccess(w, ChatHistoryResponse{Messages: msgs})
}
