package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/cvault/cvault/pkg/analysis"
	"github.com/cvault/cvault/pkg/entity"
)

// handleUploadCV stores a new CV for the caller and kicks off background
// analysis. The id is server-generated so it always fits the key budget.
func (s *Server) handleUploadCV(w http.ResponseWriter, r *http.Request) {
	var req CVRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cv := &entity.CV{
		ID:      "cv_" + ksuid.New().String(),
		UserID:  callerID(r),
		Title:   req.Title,
		Content: req.Content,
	}
	if err := s.store.UploadCV(cv); err != nil {
		s.metrics.RecordStorageOperation("upload_cv", false)
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	s.metrics.RecordStorageOperation("upload_cv", true)

	s.triggerAnalysis(cv.ID)
	sendSuccess(w, cv)
}

// handleGetCV returns one of the caller's CVs
func (s *Server) handleGetCV(w http.ResponseWriter, r *http.Request) {
	cv, err := s.store.GetCV(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	if cv.UserID != callerID(r) {
		sendError(w, "CV not found", http.StatusNotFound)
		return
	}
	sendSuccess(w, cv)
}

// handleListCVs returns all of the caller's CVs
func (s *Server) handleListCVs(w http.ResponseWriter, r *http.Request) {
	cvs, err := s.store.CVsByUser(callerID(r))
	if err != nil {
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	sendSuccess(w, cvs)
}

// handleLatestCV returns the caller's highest-version CV
func (s *Server) handleLatestCV(w http.ResponseWriter, r *http.Request) {
	cv, err := s.store.LatestCV(callerID(r))
	if err != nil {
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	sendSuccess(w, cv)
}

// handleUpdateCV overwrites a CV; a content change re-triggers analysis
func (s *Server) handleUpdateCV(w http.ResponseWriter, r *http.Request) {
	var req CVRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cv := &entity.CV{
		ID:      chi.URLParam(r, "id"),
		UserID:  callerID(r),
		Title:   req.Title,
		Content: req.Content,
	}
	contentChanged, err := s.store.UpdateCV(cv)
	if err != nil {
		s.metrics.RecordStorageOperation("update_cv", false)
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	s.metrics.RecordStorageOperation("update_cv", true)

	if contentChanged {
		s.triggerAnalysis(cv.ID)
	}
	sendSuccess(w, cv)
}

// handleDeleteCV removes one of the caller's CVs
func (s *Server) handleDeleteCV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteCV(id, callerID(r)); err != nil {
		s.metrics.RecordStorageOperation("delete_cv", false)
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	s.metrics.RecordStorageOperation("delete_cv", true)
	sendSuccess(w, map[string]string{"deleted": id})
}

// triggerAnalysis runs the CV scorer in the background. The caller's request
// never waits on it; a failed run marks the CV Failed instead of leaving it
// stuck InProgress.
func (s *Server) triggerAnalysis(cvID string) {
	s.analysisWG.Add(1)
	go func() {
		defer s.analysisWG.Done()
		s.runAnalysis(cvID)
	}()
}

func (s *Server) runAnalysis(cvID string) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("analysis panicked",
				zap.String("cv_id", cvID), zap.Any("panic", rec))
			s.metrics.RecordAnalysisRun(false)
			_ = s.store.SetAnalysisStatus(cvID, entity.AnalysisFailed, "")
		}
	}()

	if err := s.store.SetAnalysisStatus(cvID, entity.AnalysisInProgress, ""); err != nil {
		s.logger.Error("analysis start failed", zap.String("cv_id", cvID), zap.Error(err))
		s.metrics.RecordAnalysisRun(false)
		return
	}

	cv, err := s.store.GetCV(cvID)
	if err != nil {
		s.logger.Error("analysis load failed", zap.String("cv_id", cvID), zap.Error(err))
		s.metrics.RecordAnalysisRun(false)
		_ = s.store.SetAnalysisStatus(cvID, entity.AnalysisFailed, "")
		return
	}

	result := analysis.Analyze(cv)
	feedback := renderFeedback(result)

	if err := s.store.SetAnalysisStatus(cvID, entity.AnalysisCompleted, feedback); err != nil {
		s.logger.Error("analysis store failed", zap.String("cv_id", cvID), zap.Error(err))
		s.metrics.RecordAnalysisRun(false)
		return
	}
	s.metrics.RecordAnalysisRun(true)
}

// renderFeedback flattens an analysis result into the stored feedback text.
func renderFeedback(result *analysis.Result) string {
	out := result.OverallFeedback
	for _, imp := range result.PriorityImprovements {
		out += " " + imp + "."
	}
	return out
}
