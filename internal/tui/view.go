package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/theme"
)

const (
	boxChecked   = "☑"
	boxUnchecked = "☐"
	maxTitleLen  = 60
)

type styles struct {
	frame    lipgloss.Style
	panel    lipgloss.Style
	title    lipgloss.Style
	muted    lipgloss.Style
	accent   lipgloss.Style
	success  lipgloss.Style
	danger   lipgloss.Style
	selected lipgloss.Style
	done     lipgloss.Style
	chip     lipgloss.Style
}

func newStyles(t theme.Theme) styles {
	bg, fg := surface(t)
	return styles{
		frame: lipgloss.NewStyle().
			Background(lipgloss.Color(bg)).
			Foreground(lipgloss.Color(fg)).
			Padding(0, 1),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Primary)),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		accent:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Primary)),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)),
		danger:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),
		selected: lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color(t.Primary)).
			Foreground(lipgloss.Color(t.PrimaryText)),
		done: lipgloss.NewStyle().Faint(true).Strikethrough(true),
		chip: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)).Italic(true),
	}
}

// surface picks background and text colours for the theme's mode. A preset
// whose background does not match the requested mode is inverted.
func surface(t theme.Theme) (bg, fg string) {
	c, err := colorful.Hex(t.Bg)
	if err != nil {
		return t.Bg, t.Text
	}
	l, _, _ := c.Lab()
	if (l < 0.5) == t.Dark() {
		return t.Bg, t.Text
	}
	return t.Text, t.Bg
}

func (m Model) View() string {
	var body string
	switch m.mode {
	case modeAdd, modeColors:
		body = m.viewForm()
	case modeCalendar:
		body = m.viewCalendar()
	default:
		body = m.viewList()
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n\n")
	b.WriteString(m.viewStatus())
	b.WriteString("\n")
	b.WriteString(m.viewHelp())

	return m.styles.frame.Render(b.String())
}

func (m Model) viewHeader() string {
	done, pending := stats(m.todos)
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d   %s",
		m.styles.title.Render("Todos"),
		m.styles.success.Render("✔"), done,
		m.styles.accent.Render("•"), pending,
		m.styles.muted.Render("Total"), len(m.todos),
		m.styles.chip.Render("["+m.filter.String()+"]"),
	)
}

func (m Model) viewList() string {
	lines := []string{m.viewHeader(), ""}

	visible := m.visible()
	if len(visible) == 0 {
		msg := "no todos"
		if m.loading {
			msg = "loading..."
		}
		lines = append(lines, m.styles.muted.Render(msg))
	}
	for i, t := range visible {
		lines = append(lines, m.renderTodo(t, i == m.cursor))
	}

	if m.mode == modeConfirm {
		lines = append(lines, "", m.styles.danger.Render(
			fmt.Sprintf("Delete all %d todos? (y/N)", len(m.todos))))
	}
	return m.styles.panel.Render(strings.Join(lines, "\n"))
}

func (m Model) renderTodo(t model.Todo, selected bool) string {
	box := m.styles.muted.Render(boxUnchecked)
	title := truncate(t.Title, maxTitleLen)
	if t.Done {
		box = m.styles.success.Render(boxChecked)
		title = m.styles.done.Render(title)
	}

	meta := []string{t.Category, t.Priority.String()}
	if t.DueDate != nil {
		meta = append(meta, "due "+t.DueDate.UTC().Format(dateLayout))
	}

	prefix := "  "
	if selected {
		prefix = m.styles.accent.Render("> ")
	}
	line := fmt.Sprintf("%s%s %s  %s", prefix, box, title, m.styles.chip.Render(strings.Join(meta, " · ")))
	if t.Note != "" {
		line += "\n      " + m.styles.muted.Render(truncate(t.Note, maxTitleLen))
	}
	return line
}

func (m Model) viewForm() string {
	lines := []string{m.styles.title.Render(m.form.title), ""}
	for i, in := range m.form.inputs {
		label := fmt.Sprintf("%-9s", m.form.labels[i])
		if i == m.form.focus {
			label = m.styles.accent.Render(label)
		} else {
			label = m.styles.muted.Render(label)
		}
		lines = append(lines, label+" "+in.View())
	}
	if m.form.err != "" {
		lines = append(lines, "", m.styles.danger.Render(m.form.err))
	}
	return m.styles.panel.Render(strings.Join(lines, "\n"))
}

func (m Model) viewCalendar() string {
	lines := []string{m.cal.render(m.todos, m.styles), ""}

	day := m.cal.selected().Format(dateLayout)
	due := m.cal.dueOn(m.todos)
	if len(due) == 0 {
		lines = append(lines, m.styles.muted.Render("nothing due on "+day))
	} else {
		lines = append(lines, m.styles.accent.Render("due on "+day))
		for _, t := range due {
			lines = append(lines, m.renderTodo(t, false))
		}
	}
	return m.styles.panel.Render(strings.Join(lines, "\n"))
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return m.styles.danger.Render("✖ " + m.err.Error())
	}
	if m.status != "" {
		return m.styles.success.Render("✔ " + m.status)
	}
	return m.styles.muted.Render(fmt.Sprintf("theme: %s (%s)", m.theme.Name, m.theme.Mode))
}

func (m Model) viewHelp() string {
	switch m.mode {
	case modeAdd, modeColors:
		return m.help.View(formKeys(m.keys))
	case modeCalendar:
		return m.help.View(calendarKeys(m.keys))
	default:
		return m.help.View(m.keys)
	}
}

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

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
