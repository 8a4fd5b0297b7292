package errors

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/flatsite/internal/logfields"
)

// HTTPErrorResponse is the JSON body written for failed requests.
type HTTPErrorResponse struct {
	Error     string         `json:"error"`
	Code      string         `json:"code,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Retryable bool           `json:"retryable,omitempty"`
}

// HTTPErrorAdapter writes classified errors as JSON responses.
type HTTPErrorAdapter struct {
	logger *slog.Logger
}

// NewHTTPErrorAdapter returns an adapter logging to logger, or slog.Default when nil.
func NewHTTPErrorAdapter(logger *slog.Logger) *HTTPErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPErrorAdapter{logger: logger}
}

// StatusCodeFor maps err onto an HTTP status. Unclassified errors are 500.
func (a *HTTPErrorAdapter) StatusCodeFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if c, ok := AsClassified(err); ok {
		return traitsOf(c.category).status
	}
	return http.StatusInternalServerError
}

// FormatErrorResponse builds the response body for err. Unclassified errors
// only expose their message.
func (a *HTTPErrorAdapter) FormatErrorResponse(err error) HTTPErrorResponse {
	c, ok := AsClassified(err)
	if !ok {
		if err == nil {
			return HTTPErrorResponse{}
		}
		return HTTPErrorResponse{Error: err.Error()}
	}
	return HTTPErrorResponse{
		Error:     c.message,
		Code:      string(c.category),
		Details:   c.Context(),
		Retryable: c.CanRetry(),
	}
}

// WriteErrorResponse writes err as JSON. Server-side failures are logged at
// error level, client-side ones at debug.
func (a *HTTPErrorAdapter) WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	status := a.StatusCodeFor(err)
	body, jerr := json.Marshal(a.FormatErrorResponse(err))
	if jerr != nil {
		body = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)

	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	a.logger.LogAttrs(r.Context(), level, "Request failed",
		logfields.Method(r.Method),
		logfields.Path(r.URL.Path),
		logfields.Status(status),
		logfields.Error(err))
}
