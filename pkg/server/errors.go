package server

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	clinterrors "github.com/NVIDIA/clint/pkg/errors"
	"github.com/NVIDIA/clint/pkg/serializer"
)

// HTTPStatusFromCode maps an error code to its HTTP status.
func HTTPStatusFromCode(code clinterrors.ErrorCode) int {
	switch code {
	case clinterrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case clinterrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case clinterrors.ErrCodeNotFound:
		return http.StatusNotFound
	case clinterrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case clinterrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case clinterrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case clinterrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func retryableFromCode(code clinterrors.ErrorCode) bool {
	switch code {
	case clinterrors.ErrCodeTimeout, clinterrors.ErrCodeUnavailable,
		clinterrors.ErrCodeRateLimitExceeded, clinterrors.ErrCodeInternal:
		return true
	default:
		return false
	}
}

// mergeDetails returns a union of a and b, b winning on conflicts, or nil
// when both are empty.
func mergeDetails(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]any, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// WriteError writes an ErrorResponse carrying the request ID.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code clinterrors.ErrorCode, message string, retryable bool, details map[string]any) {

	requestID, _ := r.Context().Value(contextKeyRequestID).(string)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	errResp := ErrorResponse{
		Code:      string(code),
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	}

	serializer.RespondJSON(w, statusCode, errResp)
}

// WriteErrorFromErr writes err as an ErrorResponse. Coded errors keep their
// code, message and context; anything else is reported as internal with
// fallbackMessage.
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string, details map[string]any) {
	var se *clinterrors.StructuredError
	if !stderrors.As(err, &se) {
		d := mergeDetails(details, map[string]any{"error": err.Error()})
		WriteError(w, r, http.StatusInternalServerError, clinterrors.ErrCodeInternal,
			fallbackMessage, retryableFromCode(clinterrors.ErrCodeInternal), d)
		return
	}

	d := mergeDetails(se.Context, details)
	if se.Cause != nil {
		d = mergeDetails(d, map[string]any{"error": se.Cause.Error()})
	}
	WriteError(w, r, HTTPStatusFromCode(se.Code), se.Code, se.Message, retryableFromCode(se.Code), d)
}
