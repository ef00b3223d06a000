package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/repo"
	"github.com/BuzzLyutic/todo-api/internal/service"
	"github.com/BuzzLyutic/todo-api/pkg/respond"
)

type envelope struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Data    json.RawMessage      `json:"data"`
	Error   *respond.ErrorDetail `json:"error"`
}

func setupRouter(t *testing.T, r repo.TodoRepository) http.Handler {
	t.Helper()
	if r == nil {
		r = repo.NewMemoryRepo()
	}
	h := NewTodoHandler(service.NewTodoService(r), zap.NewNop())
	return NewRouter(h, RouterConfig{ServiceName: "todo-backend", Logger: zap.NewNop()})
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env), "body: %s", w.Body.String())
	return w, env
}

func decodeTodo(t *testing.T, env envelope) model.Todo {
	t.Helper()
	var todo model.Todo
	require.NoError(t, json.Unmarshal(env.Data, &todo))
	return todo
}

func createTodo(t *testing.T, h http.Handler, body string) model.Todo {
	t.Helper()
	w, env := do(t, h, http.MethodPost, "/api/todos", body)
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	return decodeTodo(t, env)
}

func TestTodoHandler_Create(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		wantCode      int
		wantMessage   string
		wantType      string
		checkResponse func(*testing.T, *httptest.ResponseRecorder, model.Todo)
	}{
		{
			name:        "defaults applied",
			body:        `{"title":"Buy milk"}`,
			wantCode:    http.StatusCreated,
			wantMessage: "Created",
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder, todo model.Todo) {
				assert.Equal(t, "Buy milk", todo.Title)
				assert.Equal(t, model.PriorityMedium, todo.Priority)
				assert.Equal(t, model.DefaultCategory, todo.Category)
				assert.False(t, todo.Done)
				assert.Nil(t, todo.DueDate)
				assert.Equal(t, "/api/todos/"+todo.ID.Hex(), w.Header().Get("Location"))
			},
		},
		{
			name:     "all fields",
			body:     `{"title":"  Pay rent ","note":" by card ","category":"home","dueDate":"2026-01-31","priority":"high","done":true}`,
			wantCode: http.StatusCreated,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder, todo model.Todo) {
				assert.Equal(t, "Pay rent", todo.Title)
				assert.Equal(t, "by card", todo.Note)
				assert.Equal(t, "home", todo.Category)
				assert.Equal(t, model.PriorityHigh, todo.Priority)
				assert.True(t, todo.Done)
				require.NotNil(t, todo.DueDate)
				assert.Equal(t, "2026-01-31T00:00:00Z", todo.DueDate.Format("2006-01-02T15:04:05Z07:00"))
			},
		},
		{
			name:        "blank title",
			body:        `{"title":"  "}`,
			wantCode:    http.StatusBadRequest,
			wantMessage: "title is required",
			wantType:    respond.TypeValidationError,
		},
		{
			name:        "empty body",
			body:        "",
			wantCode:    http.StatusBadRequest,
			wantMessage: "title is required",
			wantType:    respond.TypeValidationError,
		},
		{
			name:        "invalid priority",
			body:        `{"title":"x","priority":"urgent"}`,
			wantCode:    http.StatusBadRequest,
			wantMessage: "Invalid priority. Use: low, medium, high",
			wantType:    respond.TypeValidationError,
		},
		{
			name:        "invalid due date",
			body:        `{"title":"x","dueDate":"not-a-date"}`,
			wantCode:    http.StatusBadRequest,
			wantMessage: "Invalid dueDate format",
			wantType:    respond.TypeValidationError,
		},
		{
			name:        "category too long",
			body:        `{"title":"x","category":"` + strings.Repeat("c", 21) + `"}`,
			wantCode:    http.StatusBadRequest,
			wantMessage: "category must be at most 20 characters",
			wantType:    respond.TypeValidationError,
		},
		{
			name:     "unknown key",
			body:     `{"title":"x","owner":"bob"}`,
			wantCode: http.StatusBadRequest,
			wantType: respond.TypeValidationError,
		},
		{
			name:     "wrong type",
			body:     `{"title":42}`,
			wantCode: http.StatusBadRequest,
			wantType: respond.TypeValidationError,
		},
		{
			name:     "done as string",
			body:     `{"title":"x","done":"true"}`,
			wantCode: http.StatusBadRequest,
			wantType: respond.TypeValidationError,
		},
		{
			name:        "malformed json",
			body:        `{"title":`,
			wantCode:    http.StatusBadRequest,
			wantMessage: "Malformed JSON body",
			wantType:    respond.TypeValidationError,
		},
		{
			name:     "not an object",
			body:     `["x"]`,
			wantCode: http.StatusBadRequest,
			wantType: respond.TypeValidationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupRouter(t, nil)

			w, env := do(t, h, http.MethodPost, "/api/todos", tt.body)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantCode < 400, env.Success)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, env.Message)
			}
			if tt.wantType != "" {
				require.NotNil(t, env.Error)
				assert.Equal(t, tt.wantType, env.Error.Type)
				assert.Equal(t, "null", string(env.Data))
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, w, decodeTodo(t, env))
			}
		})
	}
}

func TestTodoHandler_Create_RejectedLeavesNoRecord(t *testing.T) {
	h := setupRouter(t, nil)

	do(t, h, http.MethodPost, "/api/todos", `{"title":"x","priority":"urgent"}`)
	do(t, h, http.MethodPost, "/api/todos", `{"title":"x","dueDate":"not-a-date"}`)

	_, env := do(t, h, http.MethodGet, "/api/todos", "")
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestTodoHandler_SchemaMessageNamesLocation(t *testing.T) {
	h := setupRouter(t, nil)

	_, env := do(t, h, http.MethodPost, "/api/todos", `{"title":42}`)
	assert.True(t, strings.HasPrefix(env.Message, "title: "), env.Message)

	_, env = do(t, h, http.MethodPost, "/api/todos", `{"title":"x","owner":"bob"}`)
	assert.True(t, strings.HasPrefix(env.Message, "body: "), env.Message)
}

func TestTodoHandler_List(t *testing.T) {
	h := setupRouter(t, nil)

	t.Run("empty list", func(t *testing.T) {
		w, env := do(t, h, http.MethodGet, "/api/todos", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Success)
		assert.Equal(t, "OK", env.Message)
		assert.JSONEq(t, `[]`, string(env.Data))
	})

	for i := 0; i < 3; i++ {
		createTodo(t, h, fmt.Sprintf(`{"title":"Todo %d"}`, i))
	}

	t.Run("newest first", func(t *testing.T) {
		w, env := do(t, h, http.MethodGet, "/api/todos/", "")
		assert.Equal(t, http.StatusOK, w.Code)

		var todos []model.Todo
		require.NoError(t, json.Unmarshal(env.Data, &todos))
		require.Len(t, todos, 3)
		assert.Equal(t, "Todo 2", todos[0].Title)
		assert.Equal(t, "Todo 0", todos[2].Title)
	})
}

func TestTodoHandler_Get(t *testing.T) {
	h := setupRouter(t, nil)
	created := createTodo(t, h, `{"title":"Get Test","dueDate":"2026-05-01T09:30"}`)

	t.Run("existing todo round-trips", func(t *testing.T) {
		w, env := do(t, h, http.MethodGet, "/api/todos/"+created.ID.Hex(), "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", env.Message)

		got := decodeTodo(t, env)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.Title, got.Title)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
		require.NotNil(t, got.DueDate)
		assert.True(t, created.DueDate.Equal(*got.DueDate))
	})

	t.Run("malformed id", func(t *testing.T) {
		w, env := do(t, h, http.MethodGet, "/api/todos/123", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid ID format", env.Message)
		require.NotNil(t, env.Error)
		assert.Equal(t, respond.TypeCastError, env.Error.Type)
	})

	t.Run("unknown id", func(t *testing.T) {
		w, env := do(t, h, http.MethodGet, "/api/todos/"+model.NewID().Hex(), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Todo not found", env.Message)
		assert.Nil(t, env.Error)
		assert.Equal(t, "null", string(env.Data))
	})
}

func TestTodoHandler_Update(t *testing.T) {
	h := setupRouter(t, nil)
	created := createTodo(t, h,
		`{"title":"Original","note":"keep","category":"work","priority":"low","dueDate":"2026-03-01"}`)
	path := "/api/todos/" + created.ID.Hex()

	t.Run("done only leaves other fields", func(t *testing.T) {
		w, env := do(t, h, http.MethodPut, path, `{"done":true}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Updated", env.Message)

		got := decodeTodo(t, env)
		assert.True(t, got.Done)
		assert.Equal(t, "Original", got.Title)
		assert.Equal(t, "keep", got.Note)
		assert.Equal(t, "work", got.Category)
		assert.Equal(t, model.PriorityLow, got.Priority)
		require.NotNil(t, got.DueDate)
		assert.True(t, created.DueDate.Equal(*got.DueDate))
		assert.False(t, got.UpdatedAt.Before(created.UpdatedAt))
	})

	t.Run("explicit empty note and null due date clear", func(t *testing.T) {
		w, env := do(t, h, http.MethodPut, path, `{"note":"","dueDate":null}`)
		assert.Equal(t, http.StatusOK, w.Code)

		got := decodeTodo(t, env)
		assert.Empty(t, got.Note)
		assert.Nil(t, got.DueDate)
		assert.Equal(t, "Original", got.Title)
	})

	t.Run("blank category falls back to default", func(t *testing.T) {
		_, env := do(t, h, http.MethodPut, path, `{"category":"  "}`)
		assert.Equal(t, model.DefaultCategory, decodeTodo(t, env).Category)
	})

	t.Run("validation error keeps record", func(t *testing.T) {
		w, env := do(t, h, http.MethodPut, path, `{"title":"   "}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "title is required", env.Message)

		_, env = do(t, h, http.MethodGet, path, "")
		assert.Equal(t, "Original", decodeTodo(t, env).Title)
	})

	t.Run("unknown id", func(t *testing.T) {
		w, env := do(t, h, http.MethodPut, "/api/todos/"+model.NewID().Hex(), `{"title":"x"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Todo not found", env.Message)
	})

	t.Run("malformed id", func(t *testing.T) {
		w, env := do(t, h, http.MethodPut, "/api/todos/123", `{"title":"x"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, respond.TypeCastError, env.Error.Type)
	})

	t.Run("malformed id reported before body errors", func(t *testing.T) {
		for _, body := range []string{`{"bogus":1}`, `not json`, `{"done":"yes"}`} {
			w, env := do(t, h, http.MethodPut, "/api/todos/123", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
			assert.Equal(t, "Invalid ID format", env.Message, body)
			require.NotNil(t, env.Error, body)
			assert.Equal(t, respond.TypeCastError, env.Error.Type, body)
		}
	})
}

func TestTodoHandler_Delete(t *testing.T) {
	h := setupRouter(t, nil)
	created := createTodo(t, h, `{"title":"To Delete"}`)
	path := "/api/todos/" + created.ID.Hex()

	w, env := do(t, h, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Deleted", env.Message)
	assert.Equal(t, created.ID, decodeTodo(t, env).ID)

	w, env = do(t, h, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Todo not found", env.Message)

	w, _ = do(t, h, http.MethodDelete, "/api/todos/123", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	h := setupRouter(t, nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/unknown"},
		{http.MethodPatch, "/api/todos/" + model.NewID().Hex()},
		{http.MethodDelete, "/api/todos"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w, env := do(t, h, tt.method, tt.path, "")
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, fmt.Sprintf("Route not found: %s %s", tt.method, tt.path), env.Message)
		})
	}
}

func TestRouter_Health(t *testing.T) {
	h := setupRouter(t, nil)

	w, env := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "OK", env.Message)
	assert.JSONEq(t, `{"service":"todo-backend"}`, string(env.Data))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := setupRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/todos", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}

type failingRepo struct {
	repo.TodoRepository
}

func (failingRepo) FindAll(context.Context) ([]model.Todo, error) {
	return nil, errors.New("connection reset")
}

func TestTodoHandler_InternalError(t *testing.T) {
	h := setupRouter(t, failingRepo{repo.NewMemoryRepo()})

	w, env := do(t, h, http.MethodGet, "/api/todos", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", env.Message)
	require.NotNil(t, env.Error)
	assert.Equal(t, respond.TypeError, env.Error.Type)
}

func TestDecodeFields_BodyTooLarge(t *testing.T) {
	h := setupRouter(t, nil)

	body := `{"title":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	w, env := do(t, h, http.MethodPost, "/api/todos", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Request body too large", env.Message)
}
