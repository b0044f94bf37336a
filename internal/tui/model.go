// Package tui provides the Bubble Tea game shell. It mounts one session
// engine at a time and records its result in the progress store.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/urben88/MindFlex/internal/content"
	"github.com/urben88/MindFlex/internal/difficulty"
	"github.com/urben88/MindFlex/internal/engine"
	"github.com/urben88/MindFlex/internal/generator"
	"github.com/urben88/MindFlex/internal/model"
	"github.com/urben88/MindFlex/internal/progress"
)

// Options wires a game shell.
type Options struct {
	Activity model.ActivityID
	Tier     model.Tier
	Bundle   difficulty.Bundle

	Progress  *progress.Store
	Content   *content.Adapter
	Speaker   engine.Speaker
	Rand      *generator.Generator
	Scheduler engine.Scheduler
	Logger    zerolog.Logger
}

type state int

const (
	statePlaying state = iota
	stateSaving
	stateSummary
)

type updateMsg struct{}

type resultMsg struct {
	result model.Result
}

type recordedMsg struct {
	progress model.Progress
	feedback string
	err      error
}

// Model implements the Bubble Tea game UI.
type Model struct {
	opts    Options
	eng     engine.Engine
	updates chan struct{}
	results chan model.Result

	words textinput.Model

	width  int
	height int

	state    state
	flash    string
	result   model.Result
	progress model.Progress
	feedback string
	warning  string
	quitting bool
}

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAAD14"))
	cardStyle    = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

// NewModel validates the session and builds its engine. A configuration
// error is returned before anything is shown.
func NewModel(opts Options) (*Model, error) {
	if opts.Progress == nil {
		return nil, errors.New("progress store is required")
	}
	if opts.Content == nil {
		opts.Content = content.NewAdapter(nil)
	}
	m := &Model{
		opts:    opts,
		updates: make(chan struct{}, 1),
		results: make(chan model.Result, 1),
		words:   newWordsInput(),
	}
	if err := m.mount(); err != nil {
		return nil, err
	}
	return m, nil
}

func newWordsInput() textinput.Model {
	input := textinput.New()
	input.Prompt = "Words: "
	input.Placeholder = "two words"
	input.CharLimit = 64
	return input
}

// mount builds a fresh engine for the configured session.
func (m *Model) mount() error {
	updates, results := m.updates, m.results
	eng, err := engine.New(m.opts.Activity, m.opts.Tier, m.opts.Bundle, engine.Options{
		Scheduler: m.opts.Scheduler,
		Rand:      m.opts.Rand,
		Speaker:   m.opts.Speaker,
		Stories:   m.opts.Content,
		Logger:    m.opts.Logger,
		OnUpdate: func() {
			select {
			case updates <- struct{}{}:
			default:
			}
		},
		OnResult: func(r model.Result) {
			results <- r
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", m.opts.Activity, err)
	}
	m.eng = eng
	m.state = statePlaying
	m.flash = ""
	m.feedback = ""
	m.warning = ""
	m.quitting = false
	m.words.SetValue("")
	return nil
}

func waitForUpdate(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return updateMsg{}
	}
}

func waitForResult(ch <-chan model.Result) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{result: <-ch}
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.start(), waitForUpdate(m.updates), waitForResult(m.results))
}

func (m *Model) start() tea.Cmd {
	if err := m.eng.Start(); err != nil {
		m.flash = err.Error()
		return nil
	}
	if m.opts.Activity == model.PegPractice {
		return m.words.Focus()
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.words.Width = max(10, msg.Width/2)
		return m, nil
	case updateMsg:
		return m, waitForUpdate(m.updates)
	case resultMsg:
		if m.state != statePlaying {
			return m, nil
		}
		return m, m.save(msg.result)
	case recordedMsg:
		m.state = stateSummary
		m.progress = msg.progress
		m.feedback = msg.feedback
		if msg.err != nil {
			m.warning = "Progress could not be saved: " + msg.err.Error()
		}
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC && m.state != stateSaving {
		return m.quit()
	}
	switch m.state {
	case stateSummary:
		switch msg.String() {
		case "r":
			if err := m.mount(); err != nil {
				m.warning = err.Error()
				return m, nil
			}
			return m, tea.Batch(m.start(), waitForResult(m.results))
		case "q", "esc", "enter":
			return m, tea.Quit
		}
		return m, nil
	case stateSaving:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			m.quitting = true
		}
		return m, nil
	}

	if msg.Type == tea.KeyEsc {
		return m.quit()
	}
	if m.opts.Activity == model.PegPractice {
		return m.handleWords(msg)
	}
	if msg.Type == tea.KeyEnter && canFinish(m.opts.Activity) {
		m.report(m.eng.Finish())
		return m, nil
	}
	in, ok := keyInput(m.opts.Activity, msg, m.eng.View())
	if !ok {
		return m, nil
	}
	m.report(m.eng.Submit(in))
	return m, nil
}

func (m *Model) handleWords(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		words := strings.Fields(m.words.Value())
		if len(words) != 2 {
			m.flash = "enter exactly two words"
			return m, nil
		}
		m.report(m.eng.Submit(engine.Words(words...)))
		m.words.SetValue("")
		return m, nil
	}
	var cmd tea.Cmd
	m.words, cmd = m.words.Update(msg)
	return m, cmd
}

// report shows input errors that the player can act on.
func (m *Model) report(err error) {
	switch {
	case err == nil, errors.Is(err, engine.ErrNotAccepting), errors.Is(err, engine.ErrFinished):
		m.flash = ""
	default:
		m.flash = err.Error()
	}
}

// quit leaves the shell. A running session is cancelled and nothing is
// recorded; a session that already finished is saved first.
func (m *Model) quit() (tea.Model, tea.Cmd) {
	if m.state == statePlaying {
		if r, ok := m.eng.Result(); ok {
			m.quitting = true
			return m, m.save(r)
		}
		m.eng.Cancel()
	}
	return m, tea.Quit
}

func (m *Model) save(r model.Result) tea.Cmd {
	m.state = stateSaving
	m.result = r
	m.words.Blur()
	return m.record(r)
}

func (m *Model) record(r model.Result) tea.Cmd {
	st, adapter := m.opts.Progress, m.opts.Content
	title := model.Info(r.ActivityID).Title
	return func() tea.Msg {
		ctx := context.Background()
		snap, err := st.RecordResult(ctx, r)
		return recordedMsg{
			progress: snap,
			feedback: adapter.Feedback(ctx, title, r.Score, r.Accuracy),
			err:      err,
		}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.state {
	case stateSummary:
		body = m.renderSummary()
	case stateSaving:
		body = mutedStyle.Render("Saving...")
	default:
		body = renderGame(m.eng.View(), m.width, m.opts.Speaker != nil) + m.renderWords()
	}
	header := m.renderHeader()
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return strings.Join([]string{header, body, footer}, "\n\n")
	}
	bodyHeight := max(1, m.height-2)
	return lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Top, header) + "\n" +
		lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body) + "\n" +
		lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Bottom, footer)
}

func (m *Model) renderWords() string {
	if m.opts.Activity != model.PegPractice || m.state != statePlaying {
		return ""
	}
	return "\n\n" + m.words.View()
}

func (m *Model) renderHeader() string {
	v := m.eng.View()
	segments := []string{
		titleStyle.Render(model.Info(m.opts.Activity).Title),
		mutedStyle.Render(string(m.opts.Tier)),
		fmt.Sprintf("Score %d", v.Score),
	}
	if v.Rounds > 0 {
		segments = append(segments, fmt.Sprintf("Round %d/%d", v.Round, v.Rounds))
	}
	if v.Level > 0 {
		segments = append(segments, fmt.Sprintf("Level %d", v.Level))
	}
	return strings.Join(segments, "  ")
}

func (m *Model) renderFooter() string {
	help := controls(m.opts.Activity)
	if m.state == stateSummary {
		help = "r: play again  q: quit"
	}
	line := footerStyle.Render(help)
	if m.flash != "" {
		line = wrongStyle.Render(m.flash) + "  " + line
	}
	return line
}

func (m *Model) renderSummary() string {
	r := m.result
	stats := m.progress.Stats[r.ActivityID]
	lines := []string{
		titleStyle.Render("Session complete"),
		"",
		fmt.Sprintf("Score     %s", valueStyle.Render(fmt.Sprintf("%d", r.Score))),
		fmt.Sprintf("Accuracy  %s", valueStyle.Render(fmt.Sprintf("%.0f%%", r.Accuracy*100))),
		fmt.Sprintf("Level     %s", valueStyle.Render(fmt.Sprintf("%d", r.MaxLevel))),
		fmt.Sprintf("Time      %s", valueStyle.Render(fmt.Sprintf("%.0fs", r.DurationSeconds))),
		"",
		mutedStyle.Render(fmt.Sprintf("Best %d  ·  %d plays  ·  streak %d", stats.HighScore, stats.Plays, m.progress.DailyStreak)),
	}
	if m.feedback != "" {
		lines = append(lines, "", wrapWords(m.feedback, min(60, max(20, m.width-4))))
	}
	if m.warning != "" {
		lines = append(lines, "", warnStyle.Render(m.warning))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}
