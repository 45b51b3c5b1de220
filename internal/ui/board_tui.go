package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskwell/taskwell/board"
	"github.com/taskwell/taskwell/models"
)

type boardState int

const (
	stateBrowse boardState = iota
	stateAdding
)

// MsgBoardChanged tells the model the underlying data changed outside the TUI
// (another process wrote the data file) and columns must be rebuilt.
type MsgBoardChanged struct{}

// BoardModel is the interactive kanban view. It reads columns from the
// service and routes every mutation through the drag-drop batch path, so the
// TUI sees exactly the acceptance/rejection behavior the engine enforces.
type BoardModel struct {
	svc *board.Service

	state    boardState
	cols     []Column
	col      int // active column index
	row      int // selected card within the active column
	width    int
	statusln string

	input textinput.Model

	// External change notifications (file watcher). Nil when not watching.
	Changes <-chan struct{}
}

func NewBoardModel(svc *board.Service) BoardModel {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = models.MaxTitleLen
	ti.Width = 40

	m := BoardModel{
		svc:   svc,
		width: 120,
		input: ti,
	}
	m.refresh()
	return m
}

func (m *BoardModel) refresh() {
	cols := make([]Column, 0, len(models.AllStatuses))
	for _, s := range models.AllStatuses {
		cols = append(cols, Column{Status: s, Tasks: m.svc.Partition(s)})
	}
	m.cols = cols
	m.clampCursor()
}

func (m *BoardModel) clampCursor() {
	if m.col < 0 {
		m.col = 0
	}
	if m.col >= len(m.cols) {
		m.col = len(m.cols) - 1
	}
	n := len(m.cols[m.col].Tasks)
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m BoardModel) selected() (models.Task, bool) {
	tasks := m.cols[m.col].Tasks
	if len(tasks) == 0 {
		return models.Task{}, false
	}
	return tasks[m.row], true
}

func (m BoardModel) waitForChange() tea.Cmd {
	if m.Changes == nil {
		return nil
	}
	ch := m.Changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return MsgBoardChanged{}
	}
}

func (m BoardModel) Init() tea.Cmd {
	return m.waitForChange()
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case MsgBoardChanged:
		m.refresh()
		m.statusln = StyleSubtle.Render("Board reloaded (changed on disk)")
		return m, m.waitForChange()

	case tea.KeyMsg:
		if m.state == stateAdding {
			return m.updateAdding(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m BoardModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "h", "left":
		m.col--
		m.clampCursor()
	case "l", "right":
		m.col++
		m.clampCursor()
	case "k", "up":
		m.row--
		m.clampCursor()
	case "j", "down":
		m.row++
		m.clampCursor()

	case "K":
		m.moveWithin(-1)
	case "J":
		m.moveWithin(+1)
	case "H":
		m.moveAcross(-1)
	case "L":
		m.moveAcross(+1)

	case "a":
		m.state = stateAdding
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case "d":
		if task, ok := m.selected(); ok {
			if _, err := m.svc.DeleteTask(task.ID); err != nil {
				m.statusln = StyleError.Render(err.Error())
			} else {
				m.statusln = StyleSuccess.Render(fmt.Sprintf("Deleted %q", task.Title))
			}
			m.refresh()
		}
	}
	return m, nil
}

func (m BoardModel) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.state = stateBrowse
		m.statusln = ""
		return m, nil
	case "enter":
		title := m.input.Value()
		m.state = stateBrowse
		if task, err := m.svc.CreateTask(title, ""); err != nil {
			m.statusln = StyleError.Render(err.Error())
		} else {
			m.statusln = StyleSuccess.Render(fmt.Sprintf("Added %q", task.Title))
		}
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// moveWithin reorders the selected card by delta inside its column.
func (m *BoardModel) moveWithin(delta int) {
	task, ok := m.selected()
	if !ok {
		return
	}
	op, err := board.PlanReorder(m.cols[m.col].Tasks, task.ID, m.row+delta)
	if err != nil {
		m.statusln = StyleError.Render(err.Error())
		return
	}
	m.applyOp(op)
	if m.statusln == "" {
		m.row += delta
	}
	m.refresh()
}

// moveAcross moves the selected card to an adjacent column, keeping its
// visual row where possible.
func (m *BoardModel) moveAcross(delta int) {
	task, ok := m.selected()
	if !ok {
		return
	}
	target := m.col + delta
	if target < 0 || target >= len(m.cols) {
		return
	}
	dest := m.cols[target]
	op, err := board.PlanMove(m.cols[m.col].Tasks, dest.Tasks, task.ID, dest.Status, m.row)
	if err != nil {
		m.statusln = StyleError.Render(err.Error())
		return
	}
	m.applyOp(op)
	if m.statusln == "" {
		m.col = target
	}
	m.refresh()
}

func (m *BoardModel) applyOp(op board.DragDropOperation) {
	m.statusln = ""
	res := m.svc.HandleDragDrop(op)
	if !res.OK {
		m.statusln = StyleError.Render(res.Err)
	}
}

func (m BoardModel) View() string {
	var footer string
	switch m.state {
	case stateAdding:
		footer = "New task: " + m.input.View() + "\n" + StyleHelp.Render("enter save · esc cancel")
	default:
		footer = StyleHelp.Render("h/l column · j/k card · J/K reorder · H/L move · a add · d delete · q quit")
	}

	out := RenderBoard(m.cols, m.width, m.col, m.row) + "\n"
	if m.statusln != "" {
		out += m.statusln + "\n"
	}
	return out + footer
}
