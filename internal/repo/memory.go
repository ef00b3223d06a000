package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	todos map[model.ID]model.Todo
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		todos: make(map[model.ID]model.Todo),
	}
}

func (r *MemoryRepo) Insert(ctx context.Context, t model.Todo) (model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.todos[t.ID]; exists {
		return model.Todo{}, ErrorDuplicateID
	}
	t = clone(t)
	r.todos[t.ID] = t
	return clone(t), nil
}

func (r *MemoryRepo) FindAll(ctx context.Context) ([]model.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	todos := make([]model.Todo, 0, len(r.todos))
	for _, t := range r.todos {
		todos = append(todos, clone(t))
	}
	sort.Slice(todos, func(i, j int) bool {
		if !todos[i].CreatedAt.Equal(todos[j].CreatedAt) {
			return todos[i].CreatedAt.After(todos[j].CreatedAt)
		}
		return todos[i].ID.Hex() > todos[j].ID.Hex()
	})
	return todos, nil
}

func (r *MemoryRepo) FindByID(ctx context.Context, id model.ID) (model.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.todos[id]
	if !ok {
		return model.Todo{}, ErrorNotFound
	}
	return clone(t), nil
}

func (r *MemoryRepo) FindByIDAndUpdate(ctx context.Context, id model.ID, u model.TodoUpdate) (model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.todos[id]
	if !ok {
		return model.Todo{}, ErrorNotFound
	}
	t = clone(u.Apply(t))
	r.todos[id] = t
	return clone(t), nil
}

func (r *MemoryRepo) FindByIDAndDelete(ctx context.Context, id model.ID) (model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.todos[id]
	if !ok {
		return model.Todo{}, ErrorNotFound
	}
	delete(r.todos, id)
	return t, nil
}

func (r *MemoryRepo) Close(ctx context.Context) error {
	return nil
}

// clone detaches the due date pointer from the caller's copy.
func clone(t model.Todo) model.Todo {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}

var _ TodoRepository = (*MemoryRepo)(nil)
