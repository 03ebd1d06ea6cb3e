package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cvault/cvault/pkg/entity"
)

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleCreateUser creates the caller's profile
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user := &entity.UserProfile{
		ID:          callerID(r),
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		City:        req.City,
		Country:     req.Country,
		Status:      entity.UserActive,
	}
	if err := s.store.CreateUser(user); err != nil {
		s.metrics.RecordStorageOperation("create_user", false)
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	s.metrics.RecordStorageOperation("create_user", true)
	sendSuccess(w, user)
}

// handleGetSelf returns the caller's own profile
func (s *Server) handleGetSelf(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUser(callerID(r))
	if err != nil {
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	sendSuccess(w, user)
}

// handleGetUser returns any profile by id
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUser(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	sendSuccess(w, user)
}

// handleUpdateUser overwrites the caller's profile
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user := &entity.UserProfile{
		ID:          callerID(r),
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		City:        req.City,
		Country:     req.Country,
		EducationID: req.EducationID,
		BankInfoID:  req.BankInfoID,
		Status:      entity.UserActive,
	}
	if err := s.store.UpdateUser(user); err != nil {
		s.metrics.RecordStorageOperation("update_user", false)
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	s.metrics.RecordStorageOperation("update_user", true)
	sendSuccess(w, user)
}
