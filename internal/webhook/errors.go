package webhook

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorCode classifies error responses.
type ErrorCode string

const (
	ErrorCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// APIError is the error envelope.
type APIError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// SendError writes an APIError with the request id attached.
func SendError(c *gin.Context, status int, code ErrorCode, message string) {
	c.JSON(status, APIError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		RequestID: c.GetString(requestIDKey),
	})
}
