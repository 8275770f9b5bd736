// Package tui provides a Bubble Tea terminal user interface for tubetunes.
package tui

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/tubetunes/internal/app"
	"github.com/handiism/tubetunes/internal/config"
	"github.com/handiism/tubetunes/internal/download"
	"github.com/handiism/tubetunes/internal/model"
	"github.com/handiism/tubetunes/internal/youtube"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(0, 1)
)

const (
	maxLogs      = 8
	eventBuffer  = 512
	refreshEvery = 250 * time.Millisecond
	nameWidth    = 40
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.Level
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	app      *app.App
	manager  *download.Manager
	settings *config.Settings

	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model

	events <-chan download.Event

	tasks    []model.Task
	stats    download.Statistics
	selected int
	logs     []LogEntry
	verbose  bool
	adding   bool

	width  int
	height int
}

// NewModel creates a TUI model for a, reading manager events from events.
func NewModel(a *app.App, events <-chan download.Event) Model {
	ti := textinput.New()
	ti.Placeholder = "https://www.youtube.com/watch?v=... or playlist URL"
	ti.CharLimit = 2000
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 30

	return Model{
		app:       a,
		manager:   a.Manager(),
		settings:  a.Settings(),
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		events:    events,
	}
}

// Message types
type (
	// EventMsg carries a manager event.
	EventMsg struct {
		Event download.Event
	}

	// AddedMsg is sent when identifiers from the input were queued.
	AddedMsg struct {
		Requested int
		TaskIDs   []string
	}

	// TickMsg is for periodic task list refreshes.
	TickMsg struct{}
)

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent(), m.tick())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-nameWidth-30, 10), 40)
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		if cmd, quit := m.handleKey(msg); quit {
			return m, tea.Quit
		} else if cmd != nil {
			cmds = append(cmds, cmd)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case EventMsg:
		m.recordEvent(msg.Event)
		if msg.Event.Type == download.EventStatisticsUpdated || msg.Event.Type == download.EventAllTasksCompleted {
			m.stats = msg.Event.Statistics
		}
		cmds = append(cmds, m.waitForEvent())

	case AddedMsg:
		skipped := msg.Requested - len(msg.TaskIDs)
		if skipped > 0 {
			m.appendLog(download.LevelInfo, fmt.Sprintf("%d already downloaded, queued or invalid", skipped))
		}
		m.refresh()

	case TickMsg:
		m.refresh()
		cmds = append(cmds, m.tick())
	}

	return m, tea.Batch(cmds...)
}

// handleKey applies a key pressed while the task list has focus.
func (m *Model) handleKey(msg tea.KeyMsg) (cmd tea.Cmd, quit bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		return nil, true

	case "a", "i":
		m.adding = true
		m.textInput.SetValue("")
		return m.textInput.Focus(), false

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.tasks)-1 {
			m.selected++
		}

	case "c":
		if t, ok := m.selectedTask(); ok && !t.Status.IsTerminal() {
			m.manager.CancelTask(t.ID)
		}

	case "C":
		n := m.manager.CancelAllTasks()
		m.appendLog(download.LevelWarning, fmt.Sprintf("Cancelled %d task(s)", n))

	case "p":
		if m.manager.Paused() {
			m.manager.Resume()
			m.appendLog(download.LevelInfo, "Resumed")
		} else {
			m.manager.Pause()
			m.appendLog(download.LevelInfo, "Paused: running downloads continue, nothing new starts")
		}

	case "x":
		n := m.manager.ClearFinished()
		m.appendLog(download.LevelInfo, fmt.Sprintf("Cleared %d finished task(s)", n))

	case "v":
		m.verbose = !m.verbose
	}

	m.refresh()
	return nil, false
}

// updateInput handles keys while the identifier input has focus.
func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.adding = false
		m.textInput.Blur()
		return m, nil

	case "enter":
		identifiers := youtube.SplitIdentifiers(m.textInput.Value())
		m.adding = false
		m.textInput.Blur()
		m.textInput.SetValue("")
		if len(identifiers) == 0 {
			return m, nil
		}
		return m, m.addIdentifiers(identifiers)
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *Model) refresh() {
	tasks := m.manager.GetAllTasks()
	slices.SortStableFunc(tasks, func(a, b model.Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	m.tasks = tasks
	m.stats = download.ComputeStatistics(tasks, time.Now())
	if m.selected >= len(m.tasks) {
		m.selected = max(len(m.tasks)-1, 0)
	}
}

func (m Model) selectedTask() (model.Task, bool) {
	if m.selected < 0 || m.selected >= len(m.tasks) {
		return model.Task{}, false
	}
	return m.tasks[m.selected], true
}

func (m *Model) recordEvent(e download.Event) {
	switch e.Type {
	case download.EventTaskProgress, download.EventStatisticsUpdated:
		// Shown through the task list and footer.
		return
	}
	level := e.Level()
	if level == download.LevelVerbose && !m.verbose {
		return
	}
	m.appendLog(level, e.Describe())
}

func (m *Model) appendLog(level download.Level, message string) {
	m.logs = append(m.logs, LogEntry{Message: message, Level: level})
	// Keep only the last few logs
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// waitForEvent returns a command that delivers the next manager event.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return EventMsg{Event: e}
	}
}

// tick returns a command to refresh the task list.
func (m Model) tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// addIdentifiers queues identifiers in the background.
func (m Model) addIdentifiers(identifiers []string) tea.Cmd {
	a := m.app
	return func() tea.Msg {
		ids := a.Add(context.Background(), identifiers)
		return AddedMsg{Requested: len(identifiers), TaskIDs: ids}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🎵 TubeTunes"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s", m.settings.DownloadsPath)))
	b.WriteString("\n\n")

	if m.adding {
		b.WriteString(subtitleStyle.Render("Video ids or URLs (comma separated):"))
		b.WriteString("\n")
		b.WriteString(m.textInput.View())
		b.WriteString("\n\n")
	}

	b.WriteString(m.viewTasks())
	b.WriteString("\n")
	b.WriteString(m.viewStats())
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func (m Model) viewTasks() string {
	if len(m.tasks) == 0 {
		return dimStyle.Render("No downloads yet. Press a to add some.") + "\n"
	}

	var b strings.Builder
	for i, t := range m.tasks {
		cursor := "  "
		nameStyle := lipgloss.NewStyle()
		if i == m.selected {
			cursor = "› "
			nameStyle = selectedStyle
		}

		b.WriteString(cursor)
		b.WriteString(statusIcon(t.Status, m.spinner.View()))
		b.WriteString(" ")
		b.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, truncate(taskName(t), nameWidth))))
		b.WriteString(" ")
		switch {
		case t.Status == model.StatusRunning:
			b.WriteString(m.progress.ViewAs(t.Progress))
		case t.Status == model.StatusFailed:
			b.WriteString(errorStyle.Render(truncate(t.ErrorMessage, 50)))
		case t.Status == model.StatusRetrying:
			b.WriteString(warningStyle.Render(fmt.Sprintf("retry %d", t.RetryCount)))
		default:
			b.WriteString(statusStyle(t.Status).Render(t.Status.String()))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewStats() string {
	s := m.stats
	line := fmt.Sprintf(
		"Active: %d | Pending: %d | Completed: %d | Failed: %d | Cancelled: %d | Overall: %.0f%%",
		s.Active, s.Pending, s.Completed, s.Failed, s.Cancelled, s.OverallProgress*100,
	)
	if s.Completed > 0 {
		line += fmt.Sprintf(" | Avg: %s", s.AverageElapsed.Round(time.Second))
	}
	if m.manager.Paused() {
		line += " | " + warningStyle.Render("PAUSED")
	}
	return boxStyle.Render(infoStyle.Render(line))
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) helpText() string {
	if m.adding {
		return "enter: queue • esc: back"
	}
	return "a: add • ↑/↓: select • c: cancel • C: cancel all • p: pause/resume • x: clear finished • v: verbose • q: quit"
}

func statusIcon(s model.TaskStatus, spin string) string {
	switch s {
	case model.StatusRunning:
		return spin
	case model.StatusCompleted:
		return successStyle.Render("✓")
	case model.StatusFailed:
		return errorStyle.Render("✗")
	case model.StatusCancelled:
		return dimStyle.Render("-")
	case model.StatusRetrying:
		return warningStyle.Render("↻")
	default:
		return dimStyle.Render("…")
	}
}

func statusStyle(s model.TaskStatus) lipgloss.Style {
	switch s {
	case model.StatusCompleted:
		return successStyle
	case model.StatusFailed:
		return errorStyle
	case model.StatusRetrying:
		return warningStyle
	default:
		return dimStyle
	}
}

func taskName(t model.Task) string {
	if t.Artifact != nil && t.Artifact.Title != "" {
		return t.Artifact.DisplayName()
	}
	return t.Identifier
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// Run starts the TUI application with the given settings.
func Run(settings *config.Settings, logger *slog.Logger) error {
	a, err := app.New(settings, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	events, unsubscribe := a.Manager().Subscribe(eventBuffer)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() {
		runErr <- a.Run(ctx)
	}()

	p := tea.NewProgram(NewModel(a, events), tea.WithAltScreen())
	_, err = p.Run()

	cancel()
	if rerr := <-runErr; err == nil {
		err = rerr
	}
	return err
}
