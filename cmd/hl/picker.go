package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hpungsan/hl/internal/entry"
)

var pickerStyle = lipgloss.NewStyle().Margin(1, 2)

// pickerItem adapts an entry for the list widget.
type pickerItem struct {
	entry *entry.Entry
}

func (i pickerItem) FilterValue() string {
	return i.entry.Body
}

func (i pickerItem) Title() string {
	return fmt.Sprintf("[%d] %s", i.entry.ID, entry.Preview(i.entry.Body))
}

func (i pickerItem) Description() string {
	return entry.ShortMeta(i.entry)
}

// pickerModel drives the full-screen entry picker.
type pickerModel struct {
	list     list.Model
	selected *entry.Entry
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// While the filter input is focused these keys belong to it.
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "enter":
				if item, ok := m.list.SelectedItem().(pickerItem); ok {
					m.selected = item.entry
				}
				return m, tea.Quit
			case "q", "esc":
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		h, v := pickerStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	return pickerStyle.Render(m.list.View())
}

// pickEntry shows a full-screen picker over the given entries and returns
// the selection. A nil entry with a nil error means the user quit without
// choosing.
func pickEntry(entries []*entry.Entry) (*entry.Entry, error) {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = pickerItem{entry: e}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select a highlight to edit"
	l.SetShowStatusBar(true)

	final, err := tea.NewProgram(pickerModel{list: l}, tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}

	m, ok := final.(pickerModel)
	if !ok {
		return nil, nil
	}
	return m.selected, nil
}
