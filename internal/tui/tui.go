// Package tui provides a Bubble Tea terminal user interface for music-downloader.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/music-downloader/internal/catalog"
	"github.com/handiism/music-downloader/internal/download"
	"github.com/handiism/music-downloader/internal/model"
)

// maxLogs is the number of progress lines kept on screen.
const maxLogs = 10

// maxListed is the number of resolved tracks listed while downloading.
const maxListed = 8

var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateResolving
	StateDownloading
	StateComplete
	StateError
)

// Resolver turns the entered query into tracks.
type Resolver interface {
	Resolve(ctx context.Context, query string, opts catalog.Options) ([]*model.Track, error)
}

// Runner executes a batch. *download.Manager implements it.
type Runner interface {
	Preflight(opts download.Options) error
	Run(ctx context.Context, tracks []*model.Track, opts download.Options) *download.BatchReport
	GetProgress() (filesDone, filesTotal int32)
}

// RunnerFactory creates a Runner reporting to onProgress.
type RunnerFactory func(onProgress func(download.ProgressEvent)) Runner

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model

	resolver  Resolver
	newRunner RunnerFactory
	options   download.Options
	runner    Runner
	events    chan download.ProgressEvent

	logs   []LogEntry
	tracks []*model.Track
	report *download.BatchReport
	err    error

	ctx    context.Context
	cancel context.CancelFunc

	filesDone  int32
	filesTotal int32

	// Options
	queryType    int
	playlist     bool
	artistAlbums bool
	verbose      bool

	width  int
	height int
}

// NewModel creates a new TUI model. opts are the base run options; the
// playlist toggle overrides opts.CreatePlaylist.
func NewModel(resolver Resolver, newRunner RunnerFactory, opts download.Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Spotify or Bandcamp link, or a search query"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#1DB954"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		resolver:  resolver,
		newRunner: newRunner,
		options:   opts,
		playlist:  opts.CreatePlaylist,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent for every event reported by the runner.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// ResolvedMsg is sent when the query has been resolved.
	ResolvedMsg struct {
		Tracks []*model.Track
		Err    error
	}

	// DownloadDoneMsg is sent when the batch completes.
	DownloadDoneMsg struct {
		Report *download.BatchReport
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// QueryType returns the selected search type.
func (m Model) QueryType() model.QueryType {
	return model.QueryTypes[m.queryType]
}

// State returns the current UI state.
func (m Model) State() State {
	return m.state
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			switch m.state {
			case StateInput:
				return m, tea.Quit
			case StateResolving, StateDownloading:
				m.cancel()
				m.state = StateError
				m.err = errCancelled
			}
			return m, nil

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateResolving
				return m, tea.Batch(m.resolve(), m.spinner.Tick)
			}
			return m, nil

		case "tab":
			if m.state == StateInput {
				m.queryType = (m.queryType + 1) % len(model.QueryTypes)
			}
			return m, nil

		case "ctrl+p":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}
			return m, nil

		case "ctrl+r":
			if m.state == StateInput {
				m.artistAlbums = !m.artistAlbums
			}
			return m, nil

		case "ctrl+o":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}
			return m, nil

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if m.state != StateDownloading {
			return m, nil
		}
		cmds = append(cmds, m.waitForEvent())
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{Message: msg.Event.Message, Level: msg.Event.Level})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case ResolvedMsg:
		if m.state != StateResolving {
			return m, nil
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			return m, nil
		}
		m.tracks = msg.Tracks
		if len(m.tracks) == 0 {
			m.state = StateComplete
			m.report = &download.BatchReport{}
			return m, nil
		}

		opts := m.runOptions()
		m.events = make(chan download.ProgressEvent, 64)
		m.runner = m.newRunner(forward(m.events))
		if err := m.runner.Preflight(opts); err != nil {
			m.state = StateError
			m.err = err
			return m, nil
		}
		m.state = StateDownloading
		m.filesTotal = int32(len(m.tracks))
		cmds = append(cmds, m.startDownload(opts), m.tickProgress(), m.waitForEvent())

	case DownloadDoneMsg:
		if m.state != StateDownloading {
			return m, nil
		}
		m.report = msg.Report
		if m.report != nil {
			m.filesDone = int32(m.report.Total)
			m.filesTotal = int32(m.report.Total)
		}
		if m.ctx.Err() != nil {
			m.state = StateError
			m.err = errCancelled
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		if m.runner != nil && m.state == StateDownloading {
			m.filesDone, m.filesTotal = m.runner.GetProgress()

			var percent float64
			if m.filesTotal > 0 {
				percent = float64(m.filesDone) / float64(m.filesTotal)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.tracks = nil
	m.report = nil
	m.err = nil
	m.filesDone = 0
	m.filesTotal = 0
	m.runner = nil
	m.events = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
}

func (m Model) runOptions() download.Options {
	opts := m.options
	opts.CreatePlaylist = m.playlist
	return opts
}

// forward hands events to the UI without ever blocking a worker; events
// that arrive while the buffer is full are dropped from the screen (they
// still reach the logger).
func forward(events chan<- download.ProgressEvent) func(download.ProgressEvent) {
	return func(e download.ProgressEvent) {
		select {
		case events <- e:
		default:
		}
	}
}

// resolve looks up the entered query.
func (m Model) resolve() tea.Cmd {
	ctx := m.ctx
	resolver := m.resolver
	query := m.textInput.Value()
	opts := catalog.Options{Type: m.QueryType(), ArtistAlbums: m.artistAlbums}

	return func() tea.Msg {
		tracks, err := resolver.Resolve(ctx, query, opts)
		return ResolvedMsg{Tracks: tracks, Err: err}
	}
}

// startDownload runs the batch in the background.
func (m Model) startDownload(opts download.Options) tea.Cmd {
	ctx, runner, tracks, events := m.ctx, m.runner, m.tracks, m.events

	return func() tea.Msg {
		report := runner.Run(ctx, tracks, opts)
		// Run reports nothing after it returns.
		close(events)
		return DownloadDoneMsg{Report: report}
	}
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: e}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♫ Music Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download tracks, albums, playlists and podcasts"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateResolving:
		b.WriteString(m.viewResolving())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter a link or search query:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Search type: %s (tab)\n", m.QueryType())
	fmt.Fprintf(&b, "  %s Create playlist (ctrl+p)\n", checkbox(m.playlist))
	fmt.Fprintf(&b, "  %s All artist albums (ctrl+r)\n", checkbox(m.artistAlbums))
	fmt.Fprintf(&b, "  %s Verbose output (ctrl+o)\n", checkbox(m.verbose))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s  Format: %s", m.options.OutputDir, m.options.Format)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewResolving() string {
	return m.spinner.View() + " " + subtitleStyle.Render("Looking up "+m.textInput.Value()+"...") + "\n"
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(successStyle.Render(fmt.Sprintf("Found %d track(s):", len(m.tracks))))
	b.WriteString("\n")
	for i, t := range m.tracks {
		if i == maxListed {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  … and %d more", len(m.tracks)-maxListed)))
			b.WriteString("\n")
			break
		}
		b.WriteString(trackStyle.Render("  ♪ " + t.String()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	var percent float64
	if m.filesTotal > 0 {
		percent = float64(m.filesDone) / float64(m.filesTotal)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Tracks: %d/%d", m.filesDone, m.filesTotal)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	summary := "Nothing to download"
	if m.report != nil {
		summary = m.report.Summary()
	}
	return boxStyle.Render("✨ Done\n\n"+summary) + "\n"
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		fmt.Fprintf(&b, "  %s\n", m.err.Error())
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, entry := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch entry.Level {
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
		b.WriteString(style.Render(prefix + " " + entry.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • tab: search type • ctrl+p: playlist • ctrl+r: artist albums • ctrl+o: verbose • esc: quit"
	case StateResolving, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(resolver Resolver, newRunner RunnerFactory, opts download.Options) error {
	p := tea.NewProgram(NewModel(resolver, newRunner, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
