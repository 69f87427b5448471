// Package handler provides HTTP request handlers for deckshare.
package handler

import "time"

// Response is the error response envelope.
// Successful browse and health responses are bare JSON documents.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Details   any    `json:"details,omitempty"`
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// HealthResponse is the response body for GET /api/health.
type HealthResponse struct {
	Status      string `json:"status"`
	IdleSeconds int64  `json:"idle_seconds"`
}
