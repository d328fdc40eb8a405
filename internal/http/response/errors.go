package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/krishisetu/krishisetu/internal/domain"
	"github.com/krishisetu/krishisetu/pkg/logger"
)

// ErrorResponse is the JSON error envelope. ErrorHi carries the Hindi
// rendering for sentinel errors the app surfaces to farmers directly.
type ErrorResponse struct {
	Error   string `json:"error"`
	ErrorHi string `json:"error_hi,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Common error codes
const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeRateLimit     = "RATE_LIMIT_EXCEEDED"
	CodeInternalError = "INTERNAL_ERROR"
	CodeOTPExpired    = "OTP_EXPIRED"
	CodeOTPInvalid    = "OTP_INVALID"
)

func WriteError(w http.ResponseWriter, statusCode int, message, code string) {
	writeEnvelope(w, statusCode, ErrorResponse{Error: message, Code: code})
}

func writeEnvelope(w http.ResponseWriter, statusCode int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

type mapping struct {
	status    int
	code      string
	message   string
	messageHi string
}

var sentinelMappings = []struct {
	err error
	mapping
}{
	{domain.ErrInvalidCredentials, mapping{http.StatusUnauthorized, CodeUnauthorized, "invalid credentials", "गलत फोन नंबर या पासवर्ड"}},
	{domain.ErrUnauthenticated, mapping{http.StatusUnauthorized, CodeUnauthorized, "login required", "कृपया लॉगिन करें"}},
	{domain.ErrAccountDisabled, mapping{http.StatusForbidden, CodeForbidden, "account disabled", "खाता निष्क्रिय है"}},
	{domain.ErrAccountNotApproved, mapping{http.StatusForbidden, CodeForbidden, "account pending approval", "खाता स्वीकृति की प्रतीक्षा में है"}},
	{domain.ErrAccountNotFound, mapping{http.StatusNotFound, CodeNotFound, "account not found", "खाता नहीं मिला"}},
	{domain.ErrNotFound, mapping{http.StatusNotFound, CodeNotFound, "not found", "नहीं मिला"}},
	{domain.ErrDuplicate, mapping{http.StatusBadRequest, CodeConflict, "already exists", "पहले से मौजूद है"}},
	{domain.ErrOTPNotFound, mapping{http.StatusBadRequest, CodeOTPInvalid, "no active code, request a new one", "कोई सक्रिय कोड नहीं, नया कोड मांगें"}},
	{domain.ErrOTPExpired, mapping{http.StatusBadRequest, CodeOTPExpired, "code expired, request a new one", "कोड की समय सीमा समाप्त, नया कोड मांगें"}},
	{domain.ErrOTPMismatch, mapping{http.StatusBadRequest, CodeOTPInvalid, "incorrect code", "गलत कोड"}},
	{domain.ErrOTPNotVerified, mapping{http.StatusBadRequest, CodeOTPInvalid, "code not verified", "कोड सत्यापित नहीं है"}},
	{domain.ErrWorkshopFull, mapping{http.StatusConflict, CodeConflict, "workshop is full", "कार्यशाला में जगह नहीं है"}},
	{domain.ErrInvalidTransition, mapping{http.StatusConflict, CodeConflict, "status change not allowed", "स्थिति बदलना संभव नहीं"}},
}

// FromError maps a service error onto the wire. Validation errors echo the
// offending field; unknown errors become an opaque 500.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeEnvelope(w, http.StatusBadRequest, ErrorResponse{Error: ve.Error(), Code: CodeInvalidInput})
		return
	}

	for _, m := range sentinelMappings {
		if errors.Is(err, m.err) {
			writeEnvelope(w, m.status, ErrorResponse{Error: m.message, ErrorHi: m.messageHi, Code: m.code})
			return
		}
	}

	logger.ErrorContext(r.Context(), "unhandled error", "error", err, "path", r.URL.Path)
	writeEnvelope(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: CodeInternalError})
}

func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, CodeForbidden)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodeInternalError)
}

func RateLimit(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message, CodeRateLimit)
}

// JSON writes a success payload.
func JSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
