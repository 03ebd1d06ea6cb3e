package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cvault/cvault/pkg/entity"
)

func bankInfoFromRequest(req *BankInfoRequest, userID string) *entity.BankInformation {
	return &entity.BankInformation{
		UserID:            userID,
		AccountHolderName: req.AccountHolderName,
		BankName:          req.BankName,
		SwiftCode:         req.SwiftCode,
		AccountNumber:     req.AccountNumber,
		BankCountry:       req.BankCountry,
	}
}

// handleAddBankInfo stores the caller's bank information
func (s *Server) handleAddBankInfo(w http.ResponseWriter, r *http.Request) {
	var req BankInfoRequest
	if !decodeBody(w, r, &req) {
		return
	}

	info := bankInfoFromRequest(&req, callerID(r))
	if err := s.store.SaveBankInformation(info); err != nil {
		s.metrics.RecordStorageOperation("save_bank", false)
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	s.metrics.RecordStorageOperation("save_bank", true)
	sendSuccess(w, info)
}

// handleGetBankInfo returns the caller's bank information
func (s *Server) handleGetBankInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.store.BankInformationByUser(callerID(r))
	if err != nil {
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	sendSuccess(w, info)
}

// handleGetBankInfoByUser returns another user's bank information by owner id
func (s *Server) handleGetBankInfoByUser(w http.ResponseWriter, r *http.Request) {
	info, err := s.store.BankInformationByUser(chi.URLParam(r, "userID"))
	if err != nil {
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	sendSuccess(w, info)
}

// handleUpdateBankInfo overwrites existing bank information
func (s *Server) handleUpdateBankInfo(w http.ResponseWriter, r *http.Request) {
	var req BankInfoRequest
	if !decodeBody(w, r, &req) {
		return
	}

	info := bankInfoFromRequest(&req, callerID(r))
	if err := s.store.UpdateBankInformation(info); err != nil {
		s.metrics.RecordStorageOperation("update_bank", false)
		sendError(w, err.Error(), storageErrorStatus(err))
		return
	}
	s.metrics.RecordStorageOperation("update_bank", true)
	sendSuccess(w, info)
}
