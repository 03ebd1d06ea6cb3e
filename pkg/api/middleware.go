package api

import (
	"context"
	"encoding/json"
	"net/http"
)

type contextKey string

const callerIDKey contextKey = "caller_id"

// callerMiddleware requires the X-Caller-ID header on every protected route
// and stashes it in the request context.
func callerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := r.Header.Get("X-Caller-ID")
		if caller == "" {
			sendError(w, "Missing X-Caller-ID header", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), callerIDKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerID reads the authenticated caller identity from the request context.
func callerID(r *http.Request) string {
	caller, _ := r.Context().Value(callerIDKey).(string)
	return caller
}

// operatorMiddleware restricts a route subtree to the configured operator
// identity.
func operatorMiddleware(operatorID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if operatorID == "" || callerID(r) != operatorID {
				sendError(w, "Operator access required", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// sendSuccess sends a successful JSON response
func sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	response := APIResponse{
		Success: true,
		Data:    data,
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// sendError sends an error JSON response
func sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := APIResponse{
		Success: false,
		Error:   message,
	}
	_ = json.NewEncoder(w).Encode(response)
}

// decodeBody parses a JSON request body into dst, reporting a client error
// on malformed input.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		sendError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
