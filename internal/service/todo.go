package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/repo"
)

// dueDateLayouts are tried in order when parsing a due date.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

type TodoService struct {
	repo repo.TodoRepository
	now  func() time.Time
}

type Option func(*TodoService)

// WithClock replaces the clock used for createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *TodoService) {
		s.now = now
	}
}

func NewTodoService(repo repo.TodoRepository, opts ...Option) *TodoService {
	s := &TodoService{
		repo: repo,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TodoService) Create(ctx context.Context, f model.TodoFields) (model.Todo, error) {
	title, err := normalizeTitle(f.Title)
	if err != nil {
		return model.Todo{}, err
	}

	priority := model.DefaultPriority
	if f.Priority.Set {
		if priority, err = parsePriority(f.Priority); err != nil {
			return model.Todo{}, err
		}
	}

	due, err := parseDueDate(f.DueDate)
	if err != nil {
		return model.Todo{}, err
	}

	category, err := normalizeCategory(f.Category)
	if err != nil {
		return model.Todo{}, err
	}

	now := s.timestamp()
	return s.repo.Insert(ctx, model.Todo{
		ID:        model.NewID(),
		Title:     title,
		Note:      strings.TrimSpace(f.Note.Value),
		Done:      f.Done.Set && f.Done.Value,
		Category:  category,
		DueDate:   due,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *TodoService) List(ctx context.Context) ([]model.Todo, error) {
	return s.repo.FindAll(ctx)
}

func (s *TodoService) Get(ctx context.Context, rawID string) (model.Todo, error) {
	id, err := model.ParseID(rawID)
	if err != nil {
		return model.Todo{}, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *TodoService) Update(ctx context.Context, rawID string, f model.TodoFields) (model.Todo, error) {
	id, err := model.ParseID(rawID)
	if err != nil {
		return model.Todo{}, err
	}

	u, err := s.patch(f)
	if err != nil {
		return model.Todo{}, err
	}
	return s.repo.FindByIDAndUpdate(ctx, id, u)
}

func (s *TodoService) Delete(ctx context.Context, rawID string) (model.Todo, error) {
	id, err := model.ParseID(rawID)
	if err != nil {
		return model.Todo{}, err
	}
	return s.repo.FindByIDAndDelete(ctx, id)
}

// patch validates the supplied fields and builds the merge patch.
func (s *TodoService) patch(f model.TodoFields) (model.TodoUpdate, error) {
	var u model.TodoUpdate

	if f.Priority.Set {
		p, err := parsePriority(f.Priority)
		if err != nil {
			return u, err
		}
		u.Priority = &p
	}
	if f.Title.Set {
		title, err := normalizeTitle(f.Title)
		if err != nil {
			return u, err
		}
		u.Title = &title
	}
	if f.Note.Set {
		note := strings.TrimSpace(f.Note.Value)
		u.Note = &note
	}
	if f.Done.Set {
		done := f.Done.Value
		u.Done = &done
	}
	if f.Category.Set {
		category, err := normalizeCategory(f.Category)
		if err != nil {
			return u, err
		}
		u.Category = &category
	}
	if f.DueDate.Set {
		due, err := parseDueDate(f.DueDate)
		if err != nil {
			return u, err
		}
		u.DueDateSet = true
		u.DueDate = due
	}

	u.UpdatedAt = s.timestamp()
	return u, nil
}

// timestamp is truncated to milliseconds so every engine stores it unchanged.
func (s *TodoService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func normalizeTitle(title model.Optional[string]) (string, error) {
	trimmed := strings.TrimSpace(title.Value)
	if trimmed == "" {
		return "", newValidationError("title", "title is required")
	}
	return trimmed, nil
}

func parsePriority(p model.Optional[string]) (model.Priority, error) {
	priority, err := model.ParsePriority(p.Value)
	if p.Null || err != nil {
		return 0, newValidationError("priority", "Invalid priority. Use: "+model.PriorityNames())
	}
	return priority, nil
}

func normalizeCategory(category model.Optional[string]) (string, error) {
	c := strings.TrimSpace(category.Value)
	if c == "" {
		return model.DefaultCategory, nil
	}
	if utf8.RuneCountInString(c) > model.MaxCategoryLength {
		return "", newValidationError("category",
			fmt.Sprintf("category must be at most %d characters", model.MaxCategoryLength))
	}
	return c, nil
}

// parseDueDate maps absent, null and "" to no date.
func parseDueDate(due model.Optional[string]) (*time.Time, error) {
	if due.Value == "" {
		return nil, nil
	}
	raw := strings.TrimSpace(due.Value)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC().Truncate(time.Millisecond)
			return &t, nil
		}
	}
	return nil, newValidationError("dueDate", "Invalid dueDate format")
}
