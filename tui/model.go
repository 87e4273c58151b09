// Package tui is the terminal front end of the task board. It only reads the
// board and calls its operations; all state lives in board.Board.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"teamboard/board"
	"teamboard/dto"
	"teamboard/model"
)

var columnTitles = map[model.Status]string{
	model.StatusTodo:       "To Do",
	model.StatusInProgress: "In Progress",
	model.StatusDone:       "Done",
}

// doneMsg reports the outcome of a board operation.
type doneMsg struct {
	action string
	err    error
}

type Model struct {
	board   *board.Board
	userID  string
	timeout time.Duration

	keys   KeyMap
	help   help.Model
	styles Styles
	input  textinput.Model

	col, row int
	adding   bool
	busy     bool
	status   string
	err      error
	width    int
	height   int
}

// New returns the board UI. New tasks are assigned to userID.
func New(b *board.Board, userID string, timeout time.Duration) Model {
	input := textinput.New()
	input.Placeholder = "Task title"
	input.CharLimit = 200

	return Model{
		board:   b,
		userID:  userID,
		timeout: timeout,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		styles:  NewStyles(),
		input:   input,
	}
}

func (m Model) Init() tea.Cmd {
	return m.run("refreshed", func(ctx context.Context) error {
		return m.board.Refresh(ctx)
	})
}

func (m Model) run(action string, op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		return doneMsg{action: action, err: op(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case doneMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.action
		} else {
			m.status = ""
		}
		m.clampRow()
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		return m.updateBoard(msg)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.adding = false
		m.input.Reset()
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		title := strings.TrimSpace(m.input.Value())
		m.adding = false
		m.input.Reset()
		m.input.Blur()
		if title == "" {
			return m, nil
		}
		status := string(model.Statuses[m.col])
		m.busy = true
		return m, m.run("created", func(ctx context.Context) error {
			_, err := m.board.AddTask(ctx, dto.CreateTaskRequest{Title: title, AssignedTo: m.userID, Status: status})
			return err
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
		}
		m.clampRow()

	case key.Matches(msg, m.keys.Right):
		if m.col < len(model.Statuses)-1 {
			m.col++
		}
		m.clampRow()

	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}

	case key.Matches(msg, m.keys.Down):
		m.row++
		m.clampRow()

	case key.Matches(msg, m.keys.New):
		m.adding = true
		m.err = nil
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		m.busy = true
		return m, m.run("refreshed", func(ctx context.Context) error {
			return m.board.Refresh(ctx)
		})

	case key.Matches(msg, m.keys.MoveLeft), key.Matches(msg, m.keys.MoveRight):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		target := m.col + 1
		if key.Matches(msg, m.keys.MoveLeft) {
			target = m.col - 1
		}
		if target < 0 || target >= len(model.Statuses) {
			return m, nil
		}
		status := model.Statuses[target]
		m.col, m.row = target, 0
		m.busy = true
		return m, m.run("moved", func(ctx context.Context) error {
			_, err := m.board.MoveTask(ctx, task.ID, status)
			return err
		})

	case key.Matches(msg, m.keys.Delete):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.busy = true
		return m, m.run("deleted", func(ctx context.Context) error {
			return m.board.RemoveTask(ctx, task.ID)
		})
	}
	return m, nil
}

func (m Model) selected() (model.PopulatedTask, bool) {
	tasks := m.board.Bucket(model.Statuses[m.col])
	if m.row < 0 || m.row >= len(tasks) {
		return model.PopulatedTask{}, false
	}
	return tasks[m.row], true
}

func (m *Model) clampRow() {
	n := len(m.board.Bucket(model.Statuses[m.col]))
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m Model) View() string {
	width := 28
	if m.width > 0 {
		width = max(20, m.width/len(model.Statuses)-4)
	}

	cols := make([]string, 0, len(model.Statuses))
	for i, col := range m.board.Columns() {
		cols = append(cols, m.renderColumn(i, col, width))
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	b.WriteString("\n")

	switch {
	case m.adding:
		b.WriteString(fmt.Sprintf("New task in %s: %s\n", columnTitles[model.Statuses[m.col]], m.input.View()))
	case m.err != nil:
		b.WriteString(m.styles.Error.Render("Error: "+m.err.Error()) + "\n")
	case m.busy:
		b.WriteString(m.styles.Meta.Render("working...") + "\n")
	case m.status != "":
		b.WriteString(m.styles.Status.Render(m.status) + "\n")
	default:
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderColumn(index int, col board.Column, width int) string {
	style := m.styles.Column
	if index == m.col {
		style = m.styles.ColumnFocused
	}

	lines := []string{m.styles.Header.Render(fmt.Sprintf("%s (%d)", columnTitles[col.Status], len(col.Tasks)))}
	for i, t := range col.Tasks {
		title := truncate(t.Title, width-2)
		if index == m.col && i == m.row {
			lines = append(lines, m.styles.ItemSelected.Render("> "+title))
		} else {
			lines = append(lines, m.styles.Item.Render("  "+title))
		}

		meta := string(t.Priority)
		if p, ok := m.styles.Priority[meta]; ok {
			meta = p.Render(meta)
		}
		if t.AssignedTo != nil {
			meta += m.styles.Meta.Render(" @" + t.AssignedTo.Name)
		}
		lines = append(lines, "  "+meta)
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
