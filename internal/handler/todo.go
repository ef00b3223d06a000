package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/repo"
	"github.com/BuzzLyutic/todo-api/internal/service"
	"github.com/BuzzLyutic/todo-api/pkg/respond"
)

const (
	msgOK       = "OK"
	msgCreated  = "Created"
	msgUpdated  = "Updated"
	msgDeleted  = "Deleted"
	msgNotFound = "Todo not found"
)

type TodoHandler struct {
	service *service.TodoService
	logger  *zap.Logger
}

func NewTodoHandler(srv *service.TodoService, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(w, r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	todo, err := h.service.Create(r.Context(), fields)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/todos/%s", todo.ID.Hex()))
	respond.OK(w, r, http.StatusCreated, msgCreated, todo)
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	todos, err := h.service.List(r.Context())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.OK(w, r, http.StatusOK, msgOK, todos)
}

func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	todo, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.OK(w, r, http.StatusOK, msgOK, todo)
}

func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	// a malformed id wins over a bad body
	id, err := model.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	fields, err := decodeFields(w, r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	todo, err := h.service.Update(r.Context(), id.Hex(), fields)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.OK(w, r, http.StatusOK, msgUpdated, todo)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	todo, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.OK(w, r, http.StatusOK, msgDeleted, todo)
}

func (h *TodoHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, model.ErrInvalidID):
		respond.Fail(w, r, http.StatusBadRequest, "Invalid ID format", respond.TypeCastError)
	case errors.As(err, &verr):
		respond.Fail(w, r, http.StatusBadRequest, verr.Message, respond.TypeValidationError)
	case errors.Is(err, repo.ErrorNotFound):
		respond.Fail(w, r, http.StatusNotFound, msgNotFound, "")
	default:
		h.logger.Error("internal error",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		respond.Fail(w, r, http.StatusInternalServerError, "Internal Server Error", respond.TypeError)
	}
}

// Health reports that the service is up.
func Health(serviceName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.OK(w, r, http.StatusOK, msgOK, map[string]string{"service": serviceName})
	}
}

// NotFound answers unmatched routes and methods.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respond.Fail(w, r, http.StatusNotFound, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path), "")
}
