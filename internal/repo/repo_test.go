package repo

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/testutil"
)

var baseTime = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

func newTodo(title string, createdAt time.Time) model.Todo {
	return model.Todo{
		ID:        model.NewID(),
		Title:     title,
		Category:  model.DefaultCategory,
		Priority:  model.DefaultPriority,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

// testRepository runs the behaviour every engine must share. newRepo must
// return an empty repository.
func testRepository(t *testing.T, newRepo func(t *testing.T) TodoRepository) {
	ctx := context.Background()

	t.Run("insert and find", func(t *testing.T) {
		r := newRepo(t)
		due := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		todo := newTodo("Buy milk", baseTime)
		todo.Note = "2 litres"
		todo.DueDate = &due
		todo.Priority = model.PriorityHigh

		created, err := r.Insert(ctx, todo)
		require.NoError(t, err)
		assert.Equal(t, todo, created)

		found, err := r.FindByID(ctx, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, todo, found)
	})

	t.Run("find missing", func(t *testing.T) {
		r := newRepo(t)
		_, err := r.FindByID(ctx, model.NewID())
		assert.ErrorIs(t, err, ErrorNotFound)
	})

	t.Run("duplicate id", func(t *testing.T) {
		r := newRepo(t)
		todo := newTodo("once", baseTime)
		_, err := r.Insert(ctx, todo)
		require.NoError(t, err)

		_, err = r.Insert(ctx, todo)
		assert.ErrorIs(t, err, ErrorDuplicateID)
	})

	t.Run("list newest first", func(t *testing.T) {
		r := newRepo(t)
		for i, title := range []string{"first", "second", "third"} {
			_, err := r.Insert(ctx, newTodo(title, baseTime.Add(time.Duration(i)*time.Minute)))
			require.NoError(t, err)
		}

		todos, err := r.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, todos, 3)
		assert.Equal(t, "third", todos[0].Title)
		assert.Equal(t, "second", todos[1].Title)
		assert.Equal(t, "first", todos[2].Title)
	})

	t.Run("list empty", func(t *testing.T) {
		r := newRepo(t)
		todos, err := r.FindAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, todos)
		assert.Empty(t, todos)
	})

	t.Run("update touches only supplied fields", func(t *testing.T) {
		r := newRepo(t)
		due := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		todo := newTodo("Buy milk", baseTime)
		todo.DueDate = &due
		_, err := r.Insert(ctx, todo)
		require.NoError(t, err)

		done := true
		later := baseTime.Add(time.Hour)
		updated, err := r.FindByIDAndUpdate(ctx, todo.ID, model.TodoUpdate{Done: &done, UpdatedAt: later})
		require.NoError(t, err)
		assert.True(t, updated.Done)
		assert.Equal(t, "Buy milk", updated.Title)
		require.NotNil(t, updated.DueDate)
		assert.True(t, due.Equal(*updated.DueDate))
		assert.Equal(t, later, updated.UpdatedAt)
		assert.Equal(t, baseTime, updated.CreatedAt)

		cleared, err := r.FindByIDAndUpdate(ctx, todo.ID, model.TodoUpdate{DueDateSet: true, UpdatedAt: later})
		require.NoError(t, err)
		assert.Nil(t, cleared.DueDate)

		found, err := r.FindByID(ctx, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, cleared, found)
	})

	t.Run("update all fields", func(t *testing.T) {
		r := newRepo(t)
		todo := newTodo("old", baseTime)
		_, err := r.Insert(ctx, todo)
		require.NoError(t, err)

		title, note, category := "new", "details", "work"
		priority := model.PriorityLow
		due := time.Date(2026, 5, 5, 12, 0, 0, 0, time.UTC)
		updated, err := r.FindByIDAndUpdate(ctx, todo.ID, model.TodoUpdate{
			Title:      &title,
			Note:       &note,
			Category:   &category,
			Priority:   &priority,
			DueDateSet: true,
			DueDate:    &due,
			UpdatedAt:  baseTime.Add(time.Minute),
		})
		require.NoError(t, err)
		assert.Equal(t, "new", updated.Title)
		assert.Equal(t, "details", updated.Note)
		assert.Equal(t, "work", updated.Category)
		assert.Equal(t, model.PriorityLow, updated.Priority)
		require.NotNil(t, updated.DueDate)
		assert.True(t, due.Equal(*updated.DueDate))
	})

	t.Run("update missing", func(t *testing.T) {
		r := newRepo(t)
		title := "x"
		_, err := r.FindByIDAndUpdate(ctx, model.NewID(), model.TodoUpdate{Title: &title, UpdatedAt: baseTime})
		assert.ErrorIs(t, err, ErrorNotFound)
	})

	t.Run("delete returns removed todo", func(t *testing.T) {
		r := newRepo(t)
		todo := newTodo("To Delete", baseTime)
		_, err := r.Insert(ctx, todo)
		require.NoError(t, err)

		removed, err := r.FindByIDAndDelete(ctx, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, todo, removed)

		_, err = r.FindByIDAndDelete(ctx, todo.ID)
		assert.ErrorIs(t, err, ErrorNotFound)

		_, err = r.FindByID(ctx, todo.ID)
		assert.ErrorIs(t, err, ErrorNotFound)
	})

	t.Run("concurrent create and list", func(t *testing.T) {
		r := newRepo(t)
		const creators, perCreator, readers = 5, 5, 5

		var wg sync.WaitGroup
		for i := 0; i < creators; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				for j := 0; j < perCreator; j++ {
					at := baseTime.Add(time.Duration(idx*perCreator+j) * time.Second)
					_, err := r.Insert(ctx, newTodo(fmt.Sprintf("todo %d-%d", idx, j), at))
					assert.NoError(t, err)
				}
			}(i)
		}
		for i := 0; i < readers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					_, err := r.FindAll(ctx)
					assert.NoError(t, err)
				}
			}()
		}
		wg.Wait()

		all, err := r.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, creators*perCreator)
	})
}

func TestMemoryRepo(t *testing.T) {
	testRepository(t, func(t *testing.T) TodoRepository {
		return NewMemoryRepo()
	})
}

func TestMemoryRepo_ReturnsCopies(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	due := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	todo := newTodo("Buy milk", baseTime)
	todo.DueDate = &due

	_, err := r.Insert(ctx, todo)
	require.NoError(t, err)
	*todo.DueDate = due.AddDate(1, 0, 0)

	found, err := r.FindByID(ctx, todo.ID)
	require.NoError(t, err)
	assert.True(t, due.Equal(*found.DueDate))
}

func TestPostgresRepo(t *testing.T) {
	url := testutil.PostgresURL(t)
	ctx := context.Background()

	r, err := ConnectPostgres(ctx, url, 5)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close(context.Background()) })

	require.NoError(t, r.Migrate(ctx))
	// a second run finds nothing to do
	require.NoError(t, r.Migrate(ctx))

	testRepository(t, func(t *testing.T) TodoRepository {
		_, err := r.pool.Exec(ctx, "TRUNCATE todos")
		require.NoError(t, err)
		return r
	})
}

func TestPostgresRepo_Constraints(t *testing.T) {
	url := testutil.PostgresURL(t)
	ctx := context.Background()

	r, err := ConnectPostgres(ctx, url, 2)
	require.NoError(t, err)
	defer r.Close(ctx)
	require.NoError(t, r.Migrate(ctx))

	blank := newTodo("   ", baseTime)
	_, err = r.Insert(ctx, blank)
	assert.Error(t, err)

	long := newTodo("ok", baseTime)
	long.Category = "abcdefghijklmnopqrstuvwxyz"
	_, err = r.Insert(ctx, long)
	assert.Error(t, err)
}

func TestMongoRepo(t *testing.T) {
	uri := testutil.MongoURI(t)
	ctx := context.Background()

	r, err := ConnectMongo(ctx, uri, "todo_test", "todos")
	require.NoError(t, err)
	t.Cleanup(func() { r.Close(context.Background()) })

	testRepository(t, func(t *testing.T) TodoRepository {
		fresh := NewMongoRepo(r.client, "todo_test", "todos_"+model.NewID().Hex())
		require.NoError(t, fresh.EnsureIndexes(ctx))
		return fresh
	})
}
