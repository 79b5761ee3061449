// Package tui is the interactive todo list.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

// Service is what the list needs from the todo service.
type Service interface {
	List() ([]model.Todo, error)
	Create(title string, completed bool) (model.Todo, error)
	Update(id int, p model.Patch) (model.Todo, error)
	Toggle(id int) (model.Todo, error)
	Delete(id int) (model.Todo, error)
}

// listItem adapts a Todo to bubbles/list.Item
type listItem struct {
	todo model.Todo
}

func (i listItem) Title() string       { return i.todo.Title }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.todo.Title }

type mode int

const (
	browsing mode = iota
	adding
	editing
)

// Model is the Bubble Tea model. Every change goes straight to the service;
// the list is reloaded afterwards.
type Model struct {
	svc  Service
	list list.Model
	ti   textinput.Model

	mode     mode
	editID   int
	inputErr string
	status   string

	// single-level undo of the last delete
	undo *model.Todo

	width, height int
}

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	t := ui.Current()
	box := t.Muted.Render(t.BoxUnchecked)
	text := it.todo.Title
	if it.todo.Completed {
		box = t.Success.Render(t.BoxChecked)
		text = t.Done.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s %s", prefix, t.Muted.Render(fmt.Sprintf("#%d", it.todo.ID)), box, text)
}

// New builds the model and loads the current collection.
func New(svc Service) (Model, error) {
	t := ui.Current()

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = t.Title
	l.Styles.HelpStyle = t.Muted
	l.Styles.PaginationStyle = t.Muted
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")

	addBind := key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind := key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	toggleBind := key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	deleteBind := key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	undoBind := key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo"))
	extra := func() []key.Binding { return []key.Binding{toggleBind, addBind, editBind, deleteBind, undoBind} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := Model{svc: svc, list: l, ti: ti, width: 80, height: 24}
	if err := m.reload(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Run starts the program and blocks until the user quits.
func Run(svc Service) error {
	m, err := New(svc)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m *Model) reload() error {
	todos, err := m.svc.List()
	if err != nil {
		return err
	}
	items := make([]list.Item, 0, len(todos))
	done := 0
	for _, t := range todos {
		items = append(items, listItem{todo: t})
		if t.Completed {
			done++
		}
	}
	m.list.SetItems(items)

	t := ui.Current()
	m.list.Title = fmt.Sprintf("Todos   %s %d  %s %d  %s %d",
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), len(todos)-done,
		t.Accent.Render("Total"), len(todos),
	)
	return nil
}

func (m *Model) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Todo{}, false
	}
	return it.todo, true
}

// apply runs a service call and reloads; errors land in the status line.
func (m *Model) apply(status string, fn func() error) {
	if err := fn(); err != nil {
		m.status = "error: " + err.Error()
		return
	}
	m.status = status
	if err := m.reload(); err != nil {
		m.status = "error: " + err.Error()
	}
}

// Update and View implement Bubble Tea's Model
func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = size.Width, size.Height
	}

	if m.mode != browsing {
		return m.updateInput(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "q", "esc":
			if m.list.FilterState() == list.FilterApplied {
				break
			}
			return m, tea.Quit
		case " ":
			if t, ok := m.selected(); ok {
				m.apply("toggled", func() error {
					_, err := m.svc.Toggle(t.ID)
					return err
				})
			}
			return m, nil
		case "d":
			if t, ok := m.selected(); ok {
				m.apply("deleted", func() error {
					deleted, err := m.svc.Delete(t.ID)
					if err == nil {
						m.undo = &deleted
					}
					return err
				})
			}
			return m, nil
		case "u":
			if m.undo != nil {
				restore := *m.undo
				m.apply("restored", func() error {
					_, err := m.svc.Create(restore.Title, restore.Completed)
					if err == nil {
						m.undo = nil
					}
					return err
				})
			}
			return m, nil
		case "a":
			m.mode = adding
			m.inputErr = ""
			m.ti.SetValue("")
			m.ti.Placeholder = "New todo title..."
			cmd := m.ti.Focus()
			return m, cmd
		case "e":
			if t, ok := m.selected(); ok {
				m.mode = editing
				m.editID = t.ID
				m.inputErr = ""
				m.ti.SetValue(t.Title)
				m.ti.CursorEnd()
				m.ti.Placeholder = "Edit todo title..."
				cmd := m.ti.Focus()
				return m, cmd
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			title := strings.TrimSpace(m.ti.Value())
			if title == "" {
				m.inputErr = "Title cannot be empty"
				return m, nil
			}
			if m.mode == adding {
				m.apply("added", func() error {
					_, err := m.svc.Create(title, false)
					return err
				})
			} else {
				id := m.editID
				m.apply("updated", func() error {
					_, err := m.svc.Update(id, model.Patch{Title: &title})
					return err
				})
			}
			m.closeInput()
			return m, nil
		case "esc":
			m.closeInput()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.mode = browsing
	m.inputErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
}

func (m Model) View() string {
	t := ui.Current()
	listHeight := m.height - 4
	if m.mode != browsing {
		listHeight = m.height - 8
	}
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(m.width-4, listHeight)

	content := m.list.View()
	if m.status != "" {
		content += "\n" + t.Muted.Render(m.status)
	}
	if m.mode != browsing {
		title := "Add todo"
		if m.mode == editing {
			title = fmt.Sprintf("Edit todo #%d", m.editID)
		}
		if m.inputErr != "" {
			title += " - " + t.Error.Render(m.inputErr)
		}
		bar := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.BorderColor).Padding(0, 1)
		content += "\n" + bar.Render(title+"\n"+m.ti.View())
	}
	return ui.PanelString([]string{content})
}
