package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		data     interface{}
		wantCode int
		wantBody map[string]interface{}
	}{
		{
			name:     "success response",
			code:     http.StatusOK,
			data:     map[string]string{"message": "success"},
			wantCode: http.StatusOK,
			wantBody: map[string]interface{}{"message": "success"},
		},
		{
			name:     "created response",
			code:     http.StatusCreated,
			data:     map[string]int{"id": 123},
			wantCode: http.StatusCreated,
			wantBody: map[string]interface{}{"id": float64(123)}, // JSON unmarshals numbers as float64
		},
		{
			name:     "empty object",
			code:     http.StatusOK,
			data:     map[string]string{},
			wantCode: http.StatusOK,
			wantBody: map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			JSON(w, r, tt.code, tt.data)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var got map[string]interface{}
			err := json.NewDecoder(w.Body).Decode(&got)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, got)
		})
	}
}

func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)

	OK(w, r, http.StatusCreated, "Created", map[string]string{"title": "Buy milk"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Created","data":{"title":"Buy milk"}}`, w.Body.String())
}

func TestOK_NilData(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	OK(w, r, http.StatusOK, "OK", nil)

	assert.JSONEq(t, `{"success":true,"message":"OK","data":null}`, w.Body.String())
}

func TestFail(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		message  string
		errType  string
		wantBody string
	}{
		{
			name:     "cast error",
			code:     http.StatusBadRequest,
			message:  "Invalid ID format",
			errType:  TypeCastError,
			wantBody: `{"success":false,"message":"Invalid ID format","data":null,"error":{"type":"CastError"}}`,
		},
		{
			name:     "not found without detail",
			code:     http.StatusNotFound,
			message:  "Todo not found",
			wantBody: `{"success":false,"message":"Todo not found","data":null}`,
		},
		{
			name:     "internal error",
			code:     http.StatusInternalServerError,
			message:  "Internal Server Error",
			errType:  TypeError,
			wantBody: `{"success":false,"message":"Internal Server Error","data":null,"error":{"type":"Error"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			Fail(w, r, tt.code, tt.message, tt.errType)

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}
