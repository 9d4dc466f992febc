package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/motopark/api/internal/middleware"
	"github.com/stwalsh4118/motopark/api/internal/validation"
)

// Error code constants for standardized error responses
const (
	ErrNotFound        = "NOT_FOUND"
	ErrBadRequest      = "BAD_REQUEST"
	ErrInternalServer  = "INTERNAL_SERVER_ERROR"
	ErrValidation      = "VALIDATION_ERROR"
	ErrUnauthorized    = "UNAUTHORIZED"
	ErrForbidden       = "FORBIDDEN"
	ErrConflict        = "CONFLICT"
	ErrUpload          = "UPLOAD_ERROR"
	ErrTooManyRequests = "RATE_LIMITED"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Fields    []FieldViolation       `json:"fields,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// FieldViolation is one failed validation rule.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Respond writes e as the JSON error envelope and logs it at warn level,
// or error level for server faults.
func Respond(c *gin.Context, e *Error) {
	log := middleware.GetLogger(c)
	requestID := middleware.GetRequestID(c)
	status := e.Kind.Status()

	if log != nil {
		fields := map[string]interface{}{
			"code":       e.Kind.Code(),
			"message":    e.Message,
			"request_id": requestID,
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
		}
		if e.Details != nil {
			fields["details"] = e.Details
		}
		if e.Fields != nil {
			fields["fields"] = e.Fields
		}
		if status >= http.StatusInternalServerError {
			log.Error("Internal server error", e.Err, fields)
		} else {
			log.Warn("Request failed", fields)
		}
	}

	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      e.Kind.Code(),
			Message:   e.Message,
			Details:   e.Details,
			Fields:    e.Fields,
			RequestID: requestID,
		},
	})
}

// NotFound returns a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	Respond(c, New(KindNotFound, message))
}

// BadRequest returns a 400 Bad Request error response with optional details.
func BadRequest(c *gin.Context, message string, details map[string]interface{}) {
	Respond(c, &Error{Kind: KindBadRequest, Message: message, Details: details})
}

// InternalServerError returns a 500 Internal Server Error response.
// The cause is logged but never sent to the client.
func InternalServerError(c *gin.Context, message string, err error) {
	Respond(c, Wrap(KindInternal, message, err))
}

// ValidationError returns a 400 Bad Request error response with one entry
// per failed field.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	Respond(c, fromValidation(validationErrors))
}

func fromValidation(validationErrors validator.ValidationErrors) *Error {
	fields := make([]FieldViolation, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, FieldViolation{
			Field:   fe.Field(),
			Message: validation.Message(fe),
		})
	}
	return &Error{
		Kind:    KindValidation,
		Message: "Validation failed",
		Fields:  fields,
		Err:     validationErrors,
	}
}
