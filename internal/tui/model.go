// Package tui is the interactive terminal front end of the todo API.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/theme"
)

// API is the subset of the HTTP client the UI needs.
type API interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, f model.TodoFields) (model.Todo, error)
	Update(ctx context.Context, id string, f model.TodoFields) (model.Todo, error)
	Delete(ctx context.Context, id string) (model.Todo, error)
	ClearCompleted(ctx context.Context) (int, error)
	ClearAll(ctx context.Context) (int, error)
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeCalendar
	modeConfirm
	modeColors
)

type filter int

const (
	filterAll filter = iota
	filterActive
	filterDone
)

func (f filter) String() string {
	switch f {
	case filterActive:
		return "active"
	case filterDone:
		return "done"
	default:
		return "all"
	}
}

func (f filter) next() filter {
	return (f + 1) % 3
}

func (f filter) match(t model.Todo) bool {
	switch f {
	case filterActive:
		return !t.Done
	case filterDone:
		return t.Done
	default:
		return true
	}
}

type todosMsg struct {
	todos []model.Todo
	err   error
}

type mutatedMsg struct {
	status string
	err    error
}

type themeSavedMsg struct {
	err error
}

type Options struct {
	Theme theme.Theme
	// ThemePath is where theme changes are saved; empty disables saving.
	ThemePath string
	Now       func() time.Time
}

type Model struct {
	ctx context.Context
	api API

	todos   []model.Todo
	filter  filter
	cursor  int
	mode    mode
	form    form
	cal     calendar
	loading bool

	theme     theme.Theme
	themePath string
	styles    styles
	keys      keyMap
	help      help.Model

	status string
	err    error
	now    func() time.Time
}

func New(ctx context.Context, api API, opts Options) Model {
	th := opts.Theme
	if th.Name == "" {
		th = theme.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return Model{
		ctx:       ctx,
		api:       api,
		loading:   true,
		theme:     th,
		themePath: opts.ThemePath,
		styles:    newStyles(th),
		keys:      defaultKeyMap(),
		help:      help.New(),
		now:       now,
	}
}

// Run starts the program on the alternate screen and blocks until the user quits.
func Run(ctx context.Context, api API, opts Options) error {
	_, err := tea.NewProgram(New(ctx, api, opts), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return m.fetch()
}

func (m Model) fetch() tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		todos, err := api.List(ctx)
		return todosMsg{todos: todos, err: err}
	}
}

// mutate runs fn in the background; the list is re-fetched once it completes.
func (m Model) mutate(fn func(ctx context.Context, api API) (string, error)) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		status, err := fn(ctx, api)
		return mutatedMsg{status: status, err: err}
	}
}

func (m Model) saveTheme() tea.Cmd {
	if m.themePath == "" {
		return nil
	}
	path, th := m.themePath, m.theme
	return func() tea.Msg {
		return themeSavedMsg{err: theme.Save(path, th)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case todosMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.todos = msg.todos
		m.clampCursor()
		return m, nil

	case mutatedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.status
		}
		m.loading = true
		return m, m.fetch()

	case themeSavedMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd, modeColors:
			return m.updateForm(msg)
		case modeCalendar:
			return m.updateCalendar(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}
	}

	if m.mode == modeAdd || m.mode == modeColors {
		cmd := m.form.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Filter):
		m.filter = m.filter.next()
		m.cursor = 0

	case key.Matches(msg, m.keys.Toggle):
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		id, done := t.ID.Hex(), !t.Done
		return m, m.mutate(func(ctx context.Context, api API) (string, error) {
			_, err := api.Update(ctx, id, model.TodoFields{Done: model.Some(done)})
			if done {
				return "marked done", err
			}
			return "marked active", err
		})

	case key.Matches(msg, m.keys.Delete):
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		id := t.ID.Hex()
		return m, m.mutate(func(ctx context.Context, api API) (string, error) {
			deleted, err := api.Delete(ctx, id)
			return "deleted " + deleted.Title, err
		})

	case key.Matches(msg, m.keys.ClearDone):
		return m, m.mutate(func(ctx context.Context, api API) (string, error) {
			n, err := api.ClearCompleted(ctx)
			return fmt.Sprintf("cleared %d completed", n), err
		})

	case key.Matches(msg, m.keys.ClearAll):
		if len(m.todos) > 0 {
			m.mode = modeConfirm
		}

	case key.Matches(msg, m.keys.Add):
		return m.openForm("")

	case key.Matches(msg, m.keys.Calendar):
		m.cal = newCalendar(m.now())
		m.mode = modeCalendar

	case key.Matches(msg, m.keys.Theme):
		m.theme = theme.Next(m.theme.Name)
		m.styles = newStyles(m.theme)
		m.status = "theme: " + m.theme.Name
		return m, m.saveTheme()

	case key.Matches(msg, m.keys.Mode):
		m.theme = m.theme.ToggleMode()
		m.styles = newStyles(m.theme)
		m.status = m.theme.Mode + " mode"
		return m, m.saveTheme()

	case key.Matches(msg, m.keys.Colors):
		m.form = newColorForm(m.theme)
		m.mode = modeColors
		cmd := m.form.setFocus(0)
		return m, cmd

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.fetch()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeList
	if strings.ToLower(msg.String()) != "y" {
		m.status = "clear all cancelled"
		return m, nil
	}
	return m, m.mutate(func(ctx context.Context, api API) (string, error) {
		n, err := api.ClearAll(ctx)
		return fmt.Sprintf("cleared %d todos", n), err
	})
}

func (m Model) openForm(dueDate string) (tea.Model, tea.Cmd) {
	m.form = newForm(dueDate)
	m.mode = modeAdd
	cmd := m.form.setFocus(fieldTitle)
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeList
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		n := len(m.form.inputs)
		cmd := m.form.setFocus((m.form.focus + 1) % n)
		return m, cmd

	case key.Matches(msg, m.keys.PrevField):
		n := len(m.form.inputs)
		cmd := m.form.setFocus((m.form.focus + n - 1) % n)
		return m, cmd

	case key.Matches(msg, m.keys.Submit) && m.mode == modeColors:
		th, err := m.form.colors(m.theme)
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		m.mode = modeList
		m.theme = th
		m.styles = newStyles(th)
		m.status = "colours saved"
		return m, m.saveTheme()

	case key.Matches(msg, m.keys.Submit):
		fields, err := m.form.fields()
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		m.mode = modeList
		return m, m.mutate(func(ctx context.Context, api API) (string, error) {
			created, err := api.Create(ctx, fields)
			return "added " + created.Title, err
		})
	}
	cmd := m.form.update(msg)
	return m, cmd
}

func (m Model) updateCalendar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.mode = modeList
	case key.Matches(msg, m.keys.Left):
		m.cal = m.cal.moveDays(-1)
	case key.Matches(msg, m.keys.Right):
		m.cal = m.cal.moveDays(1)
	case key.Matches(msg, m.keys.Up):
		m.cal = m.cal.moveDays(-7)
	case key.Matches(msg, m.keys.Down):
		m.cal = m.cal.moveDays(7)
	case key.Matches(msg, m.keys.PrevMonth):
		m.cal = m.cal.moveMonths(-1)
	case key.Matches(msg, m.keys.NextMonth):
		m.cal = m.cal.moveMonths(1)
	case key.Matches(msg, m.keys.Pick):
		return m.openForm(m.cal.selected().Format(dateLayout))
	}
	return m, nil
}

func (m Model) visible() []model.Todo {
	out := make([]model.Todo, 0, len(m.todos))
	for _, t := range m.todos {
		if m.filter.match(t) {
			out = append(out, t)
		}
	}
	return out
}

func (m Model) selected() (model.Todo, bool) {
	visible := m.visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return model.Todo{}, false
	}
	return visible[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

const (
	fieldTitle = iota
	fieldNote
	fieldCategory
	fieldDueDate
	fieldPriority
	fieldCount
)

var formLabels = [fieldCount]string{"Title", "Note", "Category", "Due", "Priority"}

type form struct {
	title  string
	labels []string
	inputs []textinput.Model
	focus  int
	err    string
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}

func newForm(dueDate string) form {
	placeholders := [fieldCount]string{
		"What needs doing?",
		"optional",
		model.DefaultCategory,
		"YYYY-MM-DD",
		model.PriorityNames(),
	}
	limits := [fieldCount]int{200, 500, model.MaxCategoryLength, 25, 6}

	f := form{title: "New todo", labels: formLabels[:], inputs: make([]textinput.Model, fieldCount)}
	for i := range f.inputs {
		f.inputs[i] = newInput(placeholders[i], limits[i])
	}
	f.inputs[fieldDueDate].SetValue(dueDate)
	f.inputs[fieldPriority].SetValue(model.DefaultPriority.String())
	return f
}

func (f *form) setFocus(i int) tea.Cmd {
	f.focus = i
	for j := range f.inputs {
		f.inputs[j].Blur()
	}
	return f.inputs[i].Focus()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

// fields keeps blank optional inputs out of the request so server defaults apply.
func (f form) fields() (model.TodoFields, error) {
	value := func(i int) string { return strings.TrimSpace(f.inputs[i].Value()) }

	title := value(fieldTitle)
	if title == "" {
		return model.TodoFields{}, errors.New("title is required")
	}

	fields := model.TodoFields{Title: model.Some(title)}
	if v := value(fieldNote); v != "" {
		fields.Note = model.Some(v)
	}
	if v := value(fieldCategory); v != "" {
		fields.Category = model.Some(v)
	}
	if v := value(fieldDueDate); v != "" {
		fields.DueDate = model.Some(v)
	}
	if v := value(fieldPriority); v != "" {
		fields.Priority = model.Some(strings.ToLower(v))
	}
	return fields, nil
}

var colorLabels = map[string]string{
	"primary": "Primary",
	"text":    "Text",
	"success": "Done",
	"danger":  "Delete",
}

// newColorForm edits the theme's editable colours, prefilled with the current values.
func newColorForm(t theme.Theme) form {
	f := form{title: "Colours (" + t.Name + ")"}
	for _, field := range theme.Editable {
		in := newInput("#rrggbb", 7)
		in.SetValue(t.Color(field))
		f.labels = append(f.labels, colorLabels[field])
		f.inputs = append(f.inputs, in)
	}
	return f
}

// colors applies the inputs to t; the first invalid value is reported.
func (f form) colors(t theme.Theme) (theme.Theme, error) {
	for i, field := range theme.Editable {
		var err error
		if t, err = t.WithColor(field, strings.TrimSpace(f.inputs[i].Value())); err != nil {
			return t, err
		}
	}
	return t, nil
}
