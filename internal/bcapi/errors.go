package bcapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bctools/bctools/internal/messages"
)

var (
	// ErrInvalidArgument reports a caller-supplied value outside its allowed set.
	ErrInvalidArgument = errors.New(messages.APIInvalidArgument)
	// ErrFileNotFound reports a package file that is missing or unreadable.
	ErrFileNotFound = errors.New(messages.APIFileNotFound)
	// ErrRemoteRequestFailed matches every non-success API response.
	ErrRemoteRequestFailed = errors.New(messages.APIRemoteRequestFailed)
	// ErrStaleConcurrencyToken matches a 409 response to a request carrying If-Match.
	ErrStaleConcurrencyToken = errors.New(messages.APIStaleConcurrencyToken)
)

// CodeEntityWithSameKeyExists is the OData error code returned when a
// bookmark already exists for the company.
const CodeEntityWithSameKeyExists = "Internal_EntityWithSameKeyExists"

// maxErrorBody caps how much of an unparsed response body is kept in an error.
const maxErrorBody = 2048

// RequestError describes a non-success API response.
type RequestError struct {
	Op         string
	StatusCode int
	Status     string
	// Code and Message come from the OData error envelope when present.
	Code    string
	Message string
	Body    string
}

func (e *RequestError) Error() string {
	switch {
	case e.Code != "":
		return fmt.Sprintf(messages.APIRequestErrorDetailFmt, e.Op, e.Status, e.Code+": "+e.Message)
	case e.Body != "":
		return fmt.Sprintf(messages.APIRequestErrorDetailFmt, e.Op, e.Status, e.Body)
	default:
		return fmt.Sprintf(messages.APIRequestErrorFmt, e.Op, e.Status)
	}
}

// Is matches ErrRemoteRequestFailed for every response and
// ErrStaleConcurrencyToken for 409 Conflict.
func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrRemoteRequestFailed:
		return true
	case ErrStaleConcurrencyToken:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

// IsEntityExists reports whether err is the 400 response BC returns when
// creating a record whose key is already taken.
func IsEntityExists(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	return reqErr.StatusCode == http.StatusBadRequest && reqErr.Code == CodeEntityWithSameKeyExists
}

type odataError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newRequestError(op string, resp *http.Response, body []byte) *RequestError {
	reqErr := &RequestError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}
	if reqErr.Status == "" {
		reqErr.Status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var envelope odataError
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Code != "" {
		reqErr.Code = envelope.Error.Code
		reqErr.Message = envelope.Error.Message
	}

	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	reqErr.Body = text
	return reqErr
}
