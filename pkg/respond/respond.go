package respond

import (
	"encoding/json"
	"net/http"
)

// Error detail types understood by clients.
const (
	TypeCastError       = "CastError"
	TypeValidationError = "ValidationError"
	TypeError           = "Error"
)

// Envelope wraps every response body.
type Envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    any          `json:"data"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Type string `json:"type"`
}

func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func OK(w http.ResponseWriter, r *http.Request, code int, message string, data any) {
	JSON(w, r, code, Envelope{Success: true, Message: message, Data: data})
}

// Fail writes a failure envelope; data is always null. errType may be empty.
func Fail(w http.ResponseWriter, r *http.Request, code int, message string, errType string) {
	env := Envelope{Success: false, Message: message}
	if errType != "" {
		env.Error = &ErrorDetail{Type: errType}
	}
	JSON(w, r, code, env)
}
