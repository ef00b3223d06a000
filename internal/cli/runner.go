package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/BuzzLyutic/todo-api/internal/client"
	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/theme"
	"github.com/BuzzLyutic/todo-api/internal/tui"
)

// Options carry what the root command resolved from its flags.
type Options struct {
	Client    *client.Client
	Theme     theme.Theme
	ThemePath string
	Stdout    io.Writer
	Stderr    io.Writer
}

type runner struct {
	opt    Options
	styles styles
}

type styles struct {
	title   lipgloss.Style
	success lipgloss.Style
	pending lipgloss.Style
	muted   lipgloss.Style
	err     lipgloss.Style
	done    lipgloss.Style
	panel   lipgloss.Style
}

func newStyles(t theme.Theme) styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Primary)),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),
		pending: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary)),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),
		done:    lipgloss.NewStyle().Faint(true).Strikethrough(true),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	if opt.Theme.Name == "" {
		opt.Theme = theme.Default()
	}
	r := &runner{opt: opt, styles: newStyles(opt.Theme)}

	if len(args) == 0 {
		PrintHelp(opt.Stderr)
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Stdout)
		return 0

	case "ls":
		if len(a) != 0 {
			r.fail("usage: todoctl ls")
			return 2
		}
		return r.doList(ctx)

	case "add":
		return r.doAdd(ctx, a)

	case "done":
		if len(a) != 1 {
			r.fail("usage: todoctl done <index|id>")
			return 2
		}
		return r.doToggle(ctx, a[0])

	case "rm":
		if len(a) != 1 {
			r.fail("usage: todoctl rm <index|id>")
			return 2
		}
		return r.doRemove(ctx, a[0])

	case "clear-done":
		n, err := opt.Client.ClearCompleted(ctx)
		return r.report(fmt.Sprintf("cleared %d completed", n), err)

	case "clear-all":
		n, err := opt.Client.ClearAll(ctx)
		return r.report(fmt.Sprintf("cleared %d todos", n), err)

	case "health":
		name, err := opt.Client.Health(ctx)
		return r.report(fmt.Sprintf("%s is up at %s", name, opt.Client.BaseURL()), err)

	case "ui":
		err := tui.Run(ctx, opt.Client, tui.Options{Theme: opt.Theme, ThemePath: opt.ThemePath})
		if err != nil {
			r.fail("ui: " + err.Error())
			return 1
		}
		return 0
	}

	r.fail("unknown subcommand: " + cmd)
	fmt.Fprintln(opt.Stderr)
	PrintHelp(opt.Stderr)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todoctl - terminal client for the todo API

Usage:
  todoctl [-api URL] [-theme FILE] <subcommand> [args]

Subcommands:
  ls                          List todos, newest first
  add [flags] <title...>      Add a todo (-note, -category, -due YYYY-MM-DD, -priority low|medium|high)
  done <index|id>             Toggle done for a todo
  rm <index|id>               Delete a todo
  clear-done                  Delete every completed todo
  clear-all                   Delete every todo
  health                      Check that the API is reachable
  ui                          Open the interactive UI

Indexes are 1-based and refer to the order printed by ls.

Examples:
  todoctl add -priority high -due 2026-05-01 "Pay rent"
  todoctl ls
  todoctl done 2
  todoctl rm 3
`)
}

// -------------- subcommand impls ----------------

func (r *runner) doList(ctx context.Context) int {
	todos, err := r.opt.Client.List(ctx)
	if err != nil {
		r.fail("list: " + err.Error())
		return 1
	}

	done, pending := stats(todos)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		r.styles.title.Render("Todos"),
		r.styles.success.Render("✔"), done,
		r.styles.pending.Render("•"), pending,
		r.styles.muted.Render("Total"), len(todos),
	)

	lines := []string{header, r.styles.muted.Render(progressBar(done, len(todos), 28)), ""}
	if len(todos) == 0 {
		lines = append(lines, r.styles.muted.Render("no todos"))
	}
	for i, t := range todos {
		lines = append(lines, r.todoLine(i, t))
	}
	lines = append(lines, "", r.styles.muted.Render(`Tip: add with todoctl add "Buy milk"`))

	fmt.Fprintln(r.opt.Stdout, r.styles.panel.Render(strings.Join(lines, "\n")))
	return 0
}

func (r *runner) todoLine(i int, t model.Todo) string {
	box := r.styles.muted.Render("☐")
	title := t.Title
	if t.Done {
		box = r.styles.success.Render("☑")
		title = r.styles.done.Render(title)
	}
	meta := []string{t.Category, t.Priority.String()}
	if t.DueDate != nil {
		meta = append(meta, "due "+t.DueDate.UTC().Format("2006-01-02"))
	}
	return fmt.Sprintf("%s %s %s  %s",
		r.styles.muted.Render(fmt.Sprintf("%2d.", i+1)), box, title,
		r.styles.muted.Render(strings.Join(meta, " · ")))
}

func (r *runner) doAdd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(r.opt.Stderr)
	note := fs.String("note", "", "free-text note")
	category := fs.String("category", "", "category (default "+model.DefaultCategory+")")
	due := fs.String("due", "", "due date, YYYY-MM-DD or RFC 3339")
	priority := fs.String("priority", "", "priority: "+model.PriorityNames())
	if err := fs.Parse(args); err != nil {
		return 2
	}

	title := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if title == "" {
		r.fail("usage: todoctl add [flags] <title...>")
		return 2
	}

	fields := model.TodoFields{Title: model.Some(title)}
	if *note != "" {
		fields.Note = model.Some(*note)
	}
	if *category != "" {
		fields.Category = model.Some(*category)
	}
	if *due != "" {
		fields.DueDate = model.Some(*due)
	}
	if *priority != "" {
		fields.Priority = model.Some(strings.ToLower(*priority))
	}

	created, err := r.opt.Client.Create(ctx, fields)
	return r.report("added "+created.Title, err)
}

func (r *runner) doToggle(ctx context.Context, ref string) int {
	t, code := r.resolve(ctx, ref)
	if code != 0 {
		return code
	}
	updated, err := r.opt.Client.Update(ctx, t.ID.Hex(), model.TodoFields{Done: model.Some(!t.Done)})
	if updated.Done {
		return r.report("marked done: "+updated.Title, err)
	}
	return r.report("marked active: "+updated.Title, err)
}

func (r *runner) doRemove(ctx context.Context, ref string) int {
	t, code := r.resolve(ctx, ref)
	if code != 0 {
		return code
	}
	deleted, err := r.opt.Client.Delete(ctx, t.ID.Hex())
	return r.report("removed "+deleted.Title, err)
}

// resolve accepts either a 24-character id or a 1-based index into the ls order.
func (r *runner) resolve(ctx context.Context, ref string) (model.Todo, int) {
	if id, err := model.ParseID(ref); err == nil {
		t, err := r.opt.Client.Get(ctx, id.Hex())
		if err != nil {
			r.fail(err.Error())
			return model.Todo{}, 1
		}
		return t, 0
	}

	n, err := strconv.Atoi(ref)
	if err != nil {
		r.fail("not an index or id: " + ref)
		return model.Todo{}, 2
	}
	todos, err := r.opt.Client.List(ctx)
	if err != nil {
		r.fail("list: " + err.Error())
		return model.Todo{}, 1
	}
	if n < 1 || n > len(todos) {
		r.fail(fmt.Sprintf("index out of range: have %d, got %d", len(todos), n))
		fmt.Fprintln(r.opt.Stderr, r.styles.muted.Render("Hint: run `todoctl ls` to see valid indexes"))
		return model.Todo{}, 2
	}
	return todos[n-1], 0
}

func (r *runner) report(msg string, err error) int {
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			r.fail(apiErr.Message)
		} else {
			r.fail(err.Error())
		}
		return 1
	}
	r.ok(msg)
	return 0
}

func (r *runner) ok(msg string) {
	fmt.Fprintln(r.opt.Stdout, r.styles.success.Render("✔ "+msg))
}

func (r *runner) fail(msg string) {
	fmt.Fprintln(r.opt.Stderr, r.styles.err.Render("✖ "+msg))
}

// -------------- rendering helpers --------------

func stats(todos []model.Todo) (done, pending int) {
	for _, t := range todos {
		if t.Done {
			done++
		} else {
			pending++
		}
	}
	return
}

func progressBar(done, total, width int) string {
	filled := done * width / max(total, 1)
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf("] %d/%d", done, total)
}
