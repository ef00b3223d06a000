package repo

import (
	"context"
	"errors"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

var (
	ErrorNotFound    = errors.New("not found")
	ErrorDuplicateID = errors.New("duplicate id")
)

// TodoRepository is the persistence engine behind the todo store.
// Implementations do no validation; they persist what they are given.
type TodoRepository interface {
	Insert(ctx context.Context, t model.Todo) (model.Todo, error)
	// FindAll returns every todo, newest first.
	FindAll(ctx context.Context) ([]model.Todo, error)
	FindByID(ctx context.Context, id model.ID) (model.Todo, error)
	// FindByIDAndUpdate applies the patch and returns the updated todo.
	FindByIDAndUpdate(ctx context.Context, id model.ID, u model.TodoUpdate) (model.Todo, error)
	// FindByIDAndDelete removes the todo and returns it as it was.
	FindByIDAndDelete(ctx context.Context, id model.ID) (model.Todo, error)
	Close(ctx context.Context) error
}
