package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

const todoColumns = `id, title, note, done, category, due_date, priority, created_at, updated_at`

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{
		pool: pool,
	}
}

// ConnectPostgres opens a pool and checks that the database answers.
func ConnectPostgres(ctx context.Context, url string, maxConns int32) (*PostgresRepo, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewPostgresRepo(pool), nil
}

func (r *PostgresRepo) Insert(ctx context.Context, t model.Todo) (model.Todo, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO todos (`+todoColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+todoColumns,
		t.ID.Hex(), t.Title, t.Note, t.Done, t.Category, t.DueDate, t.Priority.String(), t.CreatedAt, t.UpdatedAt,
	)
	created, err := scanTodo(row)
	return created, r.mapError(err)
}

func (r *PostgresRepo) FindAll(ctx context.Context) ([]model.Todo, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := make([]model.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

func (r *PostgresRepo) FindByID(ctx context.Context, id model.ID) (model.Todo, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		WHERE id = $1
	`, id.Hex())
	t, err := scanTodo(row)
	return t, r.mapError(err)
}

func (r *PostgresRepo) FindByIDAndUpdate(ctx context.Context, id model.ID, u model.TodoUpdate) (model.Todo, error) {
	sets := make([]string, 0, 7)
	args := []any{id.Hex()}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if u.Title != nil {
		set("title", *u.Title)
	}
	if u.Note != nil {
		set("note", *u.Note)
	}
	if u.Done != nil {
		set("done", *u.Done)
	}
	if u.Category != nil {
		set("category", *u.Category)
	}
	if u.Priority != nil {
		set("priority", u.Priority.String())
	}
	if u.DueDateSet {
		set("due_date", u.DueDate)
	}
	set("updated_at", u.UpdatedAt)

	row := r.pool.QueryRow(ctx, `
		UPDATE todos
		SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+todoColumns,
		args...,
	)
	t, err := scanTodo(row)
	return t, r.mapError(err)
}

func (r *PostgresRepo) FindByIDAndDelete(ctx context.Context, id model.ID) (model.Todo, error) {
	row := r.pool.QueryRow(ctx, `
		DELETE FROM todos
		WHERE id = $1
		RETURNING `+todoColumns,
		id.Hex(),
	)
	t, err := scanTodo(row)
	return t, r.mapError(err)
}

func (r *PostgresRepo) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepo) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrorDuplicateID
	}
	return err
}

func scanTodo(row pgx.Row) (model.Todo, error) {
	var (
		t        model.Todo
		id       string
		priority string
		due      *time.Time
	)
	err := row.Scan(&id, &t.Title, &t.Note, &t.Done, &t.Category, &due, &priority, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Todo{}, err
	}

	if t.ID, err = model.ParseID(id); err != nil {
		return model.Todo{}, fmt.Errorf("stored todo has %w", err)
	}
	if t.Priority, err = model.ParsePriority(priority); err != nil {
		return model.Todo{}, fmt.Errorf("stored todo %s: %w", id, err)
	}
	if due != nil {
		d := due.UTC()
		t.DueDate = &d
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

var _ TodoRepository = (*PostgresRepo)(nil)
