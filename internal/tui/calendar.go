package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

const dateLayout = "2006-01-02"

// calendar is a month view with one selected day. Dates are UTC, like stored due dates.
type calendar struct {
	month time.Time // first day of the month
	day   int
}

func newCalendar(now time.Time) calendar {
	now = now.UTC()
	return calendar{month: firstOfMonth(now), day: now.Day()}
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func daysIn(month time.Time) int {
	return month.AddDate(0, 1, -1).Day()
}

func (c calendar) selected() time.Time {
	return c.month.AddDate(0, 0, c.day-1)
}

func (c calendar) moveDays(n int) calendar {
	d := c.selected().AddDate(0, 0, n)
	return calendar{month: firstOfMonth(d), day: d.Day()}
}

// moveMonths keeps the day of month, clamped to the length of the target month.
func (c calendar) moveMonths(n int) calendar {
	month := c.month.AddDate(0, n, 0)
	return calendar{month: month, day: min(c.day, daysIn(month))}
}

// dueByDay counts todos due on each day of the calendar month.
func (c calendar) dueByDay(todos []model.Todo) map[int]int {
	out := make(map[int]int)
	for _, t := range todos {
		if t.DueDate == nil {
			continue
		}
		d := t.DueDate.UTC()
		if d.Year() == c.month.Year() && d.Month() == c.month.Month() {
			out[d.Day()]++
		}
	}
	return out
}

// dueOn returns the todos due on the selected day.
func (c calendar) dueOn(todos []model.Todo) []model.Todo {
	day := c.selected().Format(dateLayout)
	var out []model.Todo
	for _, t := range todos {
		if t.DueDate != nil && t.DueDate.UTC().Format(dateLayout) == day {
			out = append(out, t)
		}
	}
	return out
}

// render draws a Sunday-first month grid. Days with due todos are marked with
// a trailing dot; the selected day is highlighted.
func (c calendar) render(todos []model.Todo, s styles) string {
	due := c.dueByDay(todos)

	var b strings.Builder
	header := c.month.Format("January 2006")
	pad := (7*4 - len(header)) / 2
	b.WriteString(strings.Repeat(" ", max(pad, 0)))
	b.WriteString(s.title.Render(header))
	b.WriteString("\n")
	b.WriteString(s.muted.Render(" Su  Mo  Tu  We  Th  Fr  Sa"))
	b.WriteString("\n")

	col := int(c.month.Weekday())
	b.WriteString(strings.Repeat("    ", col))
	for day := 1; day <= daysIn(c.month); day++ {
		mark := " "
		if due[day] > 0 {
			mark = "•"
		}
		cell := fmt.Sprintf("%3d", day)
		switch {
		case day == c.day:
			cell = s.selected.Render(cell)
		case due[day] > 0:
			cell = s.accent.Render(cell)
		}
		b.WriteString(cell)
		b.WriteString(s.accent.Render(mark))

		col++
		if col == 7 && day != daysIn(c.month) {
			b.WriteString("\n")
			col = 0
		}
	}
	return b.String()
}
