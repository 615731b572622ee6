// httputil/json.go
package httputil

import (
	"encoding/json"
	"net/http"
	"reflect"

	"go.uber.org/zap"
)

// ErrorResponse is the JSON error envelope returned by every handler.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

var jsonLogger = zap.NewNop()

// SetLogger sets the logger used to report encoding failures that happen
// after the status line has been sent. Call it once at startup.
func SetLogger(logger *zap.Logger) {
	if logger != nil {
		jsonLogger = logger
	}
}

// WriteJSON writes v as JSON with the given status. Status codes outside
// 100-599 are sent as 500.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		typeName := "nil"
		if v != nil {
			typeName = reflect.TypeOf(v).String()
		}
		jsonLogger.Error("json encoding failed after headers sent",
			zap.String("type", typeName), zap.Error(err))
	}
}

// JSONError writes an ErrorResponse with a machine-readable code and a
// human-readable message.
func JSONError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorResponse{Error: code, Message: message})
}
