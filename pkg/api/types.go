package api

import (
	"net/http"

	"github.com/cvault/cvault/pkg/assistant"
	"github.com/cvault/cvault/pkg/entity"
	"github.com/cvault/cvault/pkg/storage"
)

// ServerConfig holds the runtime configuration for the REST API server
type ServerConfig struct {
	Port int
	Bind string

	// OperatorID gates the admin endpoints.
	OperatorID string
}

// APIResponse is the standard envelope for all endpoints
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateUserRequest is the payload for creating or updating a profile
type CreateUserRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phone_number"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	EducationID *string `json:"education_id,omitempty"`
	BankInfoID  *string `json:"bank_info_id,omitempty"`
}

// EducationRequest is the payload for saving an education record. The record
// id is derived from the caller server-side.
type EducationRequest struct {
	SchoolName     string  `json:"school_name"`
	Track          string  `json:"track"`
	UniversityName string  `json:"university_name"`
	Major          string  `json:"major"`
	City           string  `json:"city"`
	Country        string  `json:"country"`
	Level          uint8   `json:"education_level"`
	Status         uint8   `json:"status"`
	StartYear      uint32  `json:"start_year"`
	EndYear        *uint32 `json:"end_year,omitempty"`
	GPA            *uint32 `json:"gpa,omitempty"`
}

// BankInfoRequest is the payload for saving bank information. The record id
// is derived from the caller server-side.
type BankInfoRequest struct {
	AccountHolderName string `json:"account_holder_name"`
	BankName          string `json:"bank_name"`
	SwiftCode         string `json:"swift_code"`
	AccountNumber     string `json:"account_number"`
	BankCountry       string `json:"bank_country"`
}

// CVRequest is the payload for uploading or updating a CV
type CVRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ChatStartRequest opens a session for one of the caller's CVs
type ChatStartRequest struct {
	CVID string `json:"cv_id"`
}

// ChatMessageRequest sends one message in a session
type ChatMessageRequest struct {
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
}

// SetAPIKeyRequest installs the completion API key
type SetAPIKeyRequest struct {
	APIKey string `json:"api_key"`
}

// ChatHistoryResponse wraps the messages of one session
type ChatHistoryResponse struct {
	Messages []*entity.ChatMessage `json:"messages"`
}

// StatsResponse reports record counts per entity
type StatsResponse struct {
	Users        int `json:"users"`
	Education    int `json:"education"`
	Bank         int `json:"bank"`
	CVs          int `json:"cvs"`
	ChatSessions int `json:"chat_sessions"`
	ChatMessages int `json:"chat_messages"`
}

// storageErrorStatus maps the storage taxonomy onto HTTP status codes
func storageErrorStatus(err error) int {
	switch storage.KindOf(err) {
	case storage.KindNotFound:
		return http.StatusNotFound
	case storage.KindAlreadyExists:
		return http.StatusConflict
	case storage.KindInvalidReference, storage.KindValidationError:
		return http.StatusBadRequest
	case storage.KindOrphanedRecord:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// chatErrorStatus maps the chat taxonomy onto HTTP status codes
func chatErrorStatus(err error) int {
	ce, ok := err.(*assistant.ChatError)
	if !ok {
		return http.StatusInternalServerError
	}
	switch ce.Kind {
	case assistant.ChatNotFound:
		return http.StatusNotFound
	case assistant.ChatAccessDenied:
		return http.StatusForbidden
	case assistant.ChatInvalidData:
		// The only InvalidData producer today is the rate limiter.
		return http.StatusTooManyRequests
	case assistant.ChatStorageFull:
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}
