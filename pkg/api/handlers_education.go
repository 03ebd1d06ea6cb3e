package api

import (
	"net/http"

	"github.com/cvault/cvault/pkg/entity"
)

func educationFromRequest(req *EducationRequest, userID string) *entity.EducationRecord {
	return &entity.EducationRecord{
		UserID:         userID,
		SchoolName:     req.SchoolName,
		Track:          req.Track,
		UniversityName: req.UniversityName,
		Major:          req.Major,
		City:           req.City,
		Country:        req.Country,
		Level:          entity.EducationLevel(req.Level),
		Status:         entity.EducationStatus(req.Status),
		StartYear:      req.StartYear,
		EndYear:        req.EndYear,
		GPA:            req.GPA,
	}
}

// handleAddEducation stores the caller's education record
func (s *Server) handleAddEducation(w http.ResponseWriter, r *http.Request) {
	var req EducationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rec := educationFromRequest(&req, callerID(r))
	if err := s.store.SaveEducation(rec); err != nil {
		s.metrics.RecordStorageOperation("save_education", false)
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	s.metrics.RecordStorageOperation("save_education", true)
	sendSuccess(w, rec)
}

// handleGetEducation returns the caller's education record
func (s *Server) handleGetEducation(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.EducationByUser(callerID(r))
	if err != nil {
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	sendSuccess(w, rec)
}

// handleUpdateEducation overwrites an existing education record
func (s *Server) handleUpdateEducation(w http.ResponseWriter, r *http.Request) {
	var req EducationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rec := educationFromRequest(&req, callerID(r))
	if err := s.store.UpdateEducation(rec); err != nil {
		s.metrics.RecordStorageOperation("update_education", false)
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	s.metrics.RecordStorageOperation("update_education", true)
	sendSuccess(w, rec)
}
