package model

import (
	"encoding/json"
	"time"
)

// DefaultCategory is stored when a todo has no category.
const DefaultCategory = "uncategorized"

const MaxCategoryLength = 20

type Todo struct {
	ID        ID         `json:"id"`
	Title     string     `json:"title"`
	Note      string     `json:"note"`
	Done      bool       `json:"done"`
	Category  string     `json:"category"`
	DueDate   *time.Time `json:"dueDate"`
	Priority  Priority   `json:"priority"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TodoUpdate is a normalized merge patch. Nil fields are left untouched.
type TodoUpdate struct {
	Title    *string
	Note     *string
	Done     *bool
	Category *string
	Priority *Priority

	// DueDateSet marks the due date as supplied; a nil DueDate then clears it.
	DueDateSet bool
	DueDate    *time.Time

	UpdatedAt time.Time
}

// Apply merges u into t and returns the result.
func (u TodoUpdate) Apply(t Todo) Todo {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Note != nil {
		t.Note = *u.Note
	}
	if u.Done != nil {
		t.Done = *u.Done
	}
	if u.Category != nil {
		t.Category = *u.Category
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.DueDateSet {
		t.DueDate = u.DueDate
	}
	t.UpdatedAt = u.UpdatedAt
	return t
}

// TodoFields is the request body shared by create and update.
type TodoFields struct {
	Title    Optional[string] `json:"title"`
	Note     Optional[string] `json:"note"`
	Category Optional[string] `json:"category"`
	DueDate  Optional[string] `json:"dueDate"`
	Priority Optional[string] `json:"priority"`
	Done     Optional[bool]   `json:"done"`
}

// MarshalJSON writes only the keys that are set, so a marshalled TodoFields
// is a valid merge patch.
func (f TodoFields) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 6)
	add := func(key string, set bool, v json.Marshaler) {
		if set {
			out[key] = v
		}
	}
	add("title", f.Title.Set, f.Title)
	add("note", f.Note.Set, f.Note)
	add("category", f.Category.Set, f.Category)
	add("dueDate", f.DueDate.Set, f.DueDate)
	add("priority", f.Priority.Set, f.Priority)
	add("done", f.Done.Set, f.Done)
	return json.Marshal(out)
}
