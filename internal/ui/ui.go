package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/teamhub/wunschbox/internal/models"
	"github.com/teamhub/wunschbox/internal/providers"
	"github.com/teamhub/wunschbox/internal/shared"
)

// EnqueueFunc adds a picked result to the wishlist.
type EnqueueFunc func(result providers.SearchResult) (*models.Wish, error)

// ViewState represents the current view in the picker.
type ViewState int

const (
	ResultListView ViewState = iota
	ConfirmView
	DoneView
)

// keyMap defines the [key.Binding] mapping for the picker.
type keyMap struct {
	up    key.Binding
	down  key.Binding
	enter key.Binding
	back  key.Binding
	yes   key.Binding
	no    key.Binding
	again key.Binding
	quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "pick")),
		back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "no")),
		again: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "pick another")),
		quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.yes, k.no},
		{k.again, k.quit},
	}
}

var _ list.Item = resultItem{}

// resultItem wraps [providers.SearchResult] to implement [list.Item].
type resultItem struct {
	result providers.SearchResult
}

func (i resultItem) FilterValue() string { return i.result.Title }
func (i resultItem) Title() string       { return i.result.Title }
func (i resultItem) Description() string {
	parts := []string{string(i.result.Provider)}
	if i.result.Artist != "" {
		parts = append(parts, i.result.Artist)
	}
	if i.result.Album != "" {
		parts = append(parts, i.result.Album)
	}
	if i.result.DurationMS > 0 {
		parts = append(parts, shared.FormatDurationMS(i.result.DurationMS))
	}
	return strings.Join(parts, " • ")
}

type wishAddedMsg struct {
	wish *models.Wish
	err  error
}

// Model represents the picker state.
type Model struct {
	view     ViewState
	query    string
	enqueue  EnqueueFunc
	list     list.Model
	selected *providers.SearchResult
	wish     *models.Wish
	err      error
	width    int
	height   int
	help     help.Model
	keys     keyMap
}

// NewModel creates a picker over the given search results.
func NewModel(query string, results []providers.SearchResult, enqueue EnqueueFunc) *Model {
	items := make([]list.Item, len(results))
	for i, result := range results {
		items[i] = resultItem{result: result}
	}

	resultList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	resultList.Title = fmt.Sprintf("Results for %q", query)

	return &Model{
		view:    ResultListView,
		query:   query,
		enqueue: enqueue,
		list:    resultList,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the picker state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ResultListView:
			return m.handleListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case DoneView:
			return m.handleDoneKeys(msg)
		}

	case wishAddedMsg:
		m.wish = msg.wish
		m.err = msg.err
		m.view = DoneView
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the picker based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ResultListView:
		return m.renderList()
	case ConfirmView:
		return m.renderConfirm()
	case DoneView:
		return m.renderDone()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if selected, ok := m.list.SelectedItem().(resultItem); ok {
			m.selected = &selected.result
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = ResultListView
		m.selected = nil
		return m, nil
	case "y":
		return m, m.addWish()
	}
	return m, nil
}

func (m *Model) handleDoneKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "enter":
		return m, tea.Quit
	case "a":
		m.view = ResultListView
		m.selected = nil
		m.wish = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) addWish() tea.Cmd {
	selected := *m.selected
	return func() tea.Msg {
		wish, err := m.enqueue(selected)
		return wishAddedMsg{wish: wish, err: err}
	}
}

func (m *Model) renderList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.list.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Auf die Wunschliste: '%s'?", m.selected.Title))

	var info strings.Builder
	fmt.Fprintf(&info, "\nTitel: %s\n", m.selected.Title)
	if m.selected.Artist != "" {
		fmt.Fprintf(&info, "Interpret: %s\n", m.selected.Artist)
	}
	if m.selected.Album != "" {
		fmt.Fprintf(&info, "Album: %s\n", m.selected.Album)
	}
	fmt.Fprintf(&info, "Quelle: %s\n", m.selected.Provider)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s", title, info.String(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderDone() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Wunsch fehlgeschlagen: %v\n\nPress a to pick another, q to quit", m.err))
	}

	title := styles.ok.Render("✓ Auf der Wunschliste")
	info := fmt.Sprintf("\n%s steht auf Position %d.\n", m.wish.Title, m.wish.Position)

	helpKeys := []key.Binding{m.keys.again, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}
