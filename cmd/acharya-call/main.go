// Command acharya-call runs a mock-interview voice call from the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/muesli/reflow/wordwrap"

	"github.com/aispirelabs/acharya-core/api"
	"github.com/aispirelabs/acharya-core/config"
	agent "github.com/aispirelabs/acharya-core/core"
	"github.com/aispirelabs/acharya-core/core/audio/miniaudio"
	"github.com/aispirelabs/acharya-core/core/events"
	"github.com/aispirelabs/acharya-core/core/realtime/gemini"
)

func main() {
	configPath := flag.String("config", "acharya.yaml", "path to the config file")
	interviewID := flag.String("interview", "", "interview id to conduct")
	generate := flag.Bool("generate", false, "run a generate-mode call instead of an interview")
	flag.Parse()

	if err := run(*configPath, *interviewID, *generate); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(configPath string, interviewID string, generate bool) error {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	apiClient := api.NewClient(cfg.API.BaseURL,
		api.WithTokenStore(api.NewMemoryTokenStore(
			os.Getenv("ACHARYA_ACCESS_TOKEN"),
			os.Getenv("ACHARYA_REFRESH_TOKEN"),
		)),
	)

	mode := agent.ModeInterview
	var interview *api.Interview
	if generate {
		mode = agent.ModeGenerate
	} else {
		if interviewID == "" {
			return fmt.Errorf("an interview id is required (or pass -generate)")
		}
		interview, err = apiClient.InterviewByID(context.Background(), interviewID)
		if err != nil {
			return err
		}
	}

	device, err := miniaudio.NewClient()
	if err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	defer device.Close()

	realtimeClient := gemini.NewClient(gemini.WithModel(cfg.Model))

	var program *tea.Program

	session, err := agent.NewSession(
		agent.WithAudioDevice(device),
		agent.WithRealtimeClient(realtimeClient),
		agent.WithFeedbackClient(apiClient),
		agent.WithInterviewCreator(apiClient),
		agent.WithInterview(interview),
		agent.WithMode(mode),
		agent.WithInactivityTimeout(cfg.Session.InactivityTimeout),
		agent.WithCheckInterval(cfg.Session.CheckInterval),
		agent.WithGraceDelay(cfg.Session.GraceDelay),
		agent.WithClosingMarkers(cfg.Session.ClosingMarkers...),
		agent.WithTargetSampleRate(cfg.Audio.TargetSampleRate),
		agent.WithEventHandler(func(event events.Event) {
			if program != nil {
				program.Send(sessionEventMsg{event: event})
			}
		}),
	)
	if err != nil {
		return err
	}

	program = tea.NewProgram(newModel(session, interview), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}

type sessionEventMsg struct {
	event events.Event
}

var (
	statusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
)

type model struct {
	session   *agent.Session
	interview *api.Interview

	viewport viewport.Model
	spinner  spinner.Model

	lines    []string
	status   string
	speaking bool
	asked    int
	total    int
	err      error
	width    int
	ready    bool
}

func newModel(session *agent.Session, interview *api.Interview) model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	_, total := session.Progress()
	return model{
		session:   session,
		interview: interview,
		spinner:   s,
		status:    "idle",
		total:     total,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "s":
			switch m.session.State() {
			case agent.StateIdle, agent.StateFinished, agent.StateError:
				m.status = "connecting"
				session := m.session
				return m, func() tea.Msg {
					if err := session.Start(context.Background()); err != nil {
						return sessionEventMsg{event: events.NewCallFailed(err)}
					}
					return nil
				}
			}
		case "e":
			m.session.Disconnect()
		case "q", "ctrl+c":
			m.session.Disconnect()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.refreshViewport()

	case sessionEventMsg:
		m.applyEvent(msg.event)
		m.refreshViewport()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) applyEvent(event events.Event) {
	switch event := event.(type) {
	case events.CallConnecting:
		m.status = "connecting"
	case events.CallStarted:
		m.status = "live"
		m.lines = append(m.lines, dimStyle.Render("call started"))
	case events.CallEnded:
		m.status = "finished (" + event.Reason + ")"
		m.lines = append(m.lines, dimStyle.Render("call ended: "+event.Reason))
	case events.CallFailed:
		m.status = "failed"
		m.err = event.Err
	case events.TranscriptTurnFinal:
		m.lines = append(m.lines, renderTurn(event.Role, event.Text))
	case events.SpeechStarted:
		m.speaking = true
	case events.SpeechEnded:
		m.speaking = false
	case events.QuestionAdvanced:
		m.asked = event.Index
		m.total = event.Total
	case events.QuestionsCompleted:
		m.lines = append(m.lines, dimStyle.Render("all questions asked"))
	case events.FeedbackSubmitted:
		m.lines = append(m.lines, dimStyle.Render("feedback saved: "+event.FeedbackID))
	case events.FeedbackFailed:
		m.lines = append(m.lines, errorStyle.Render("feedback failed: "+event.Err.Error()))
	case events.GenerationCompleted:
		line := "interview generation finished"
		if event.InterviewID != "" {
			line += ": " + event.InterviewID
		}
		m.lines = append(m.lines, dimStyle.Render(line))
	}
}

func renderTurn(role string, text string) string {
	if role == agent.RoleAssistant {
		return assistantStyle.Render("interviewer: ") + text
	}
	return userStyle.Render("you: ") + text
}

func (m *model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(wordwrap.String(strings.Join(m.lines, "\n"), m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}

	status := m.status
	if status == "connecting" {
		status = m.spinner.View() + " connecting"
	}
	if m.speaking {
		status += "  speaking"
	}
	if m.total > 0 {
		status += fmt.Sprintf("  questions %d/%d", m.asked, m.total)
	}
	if m.interview != nil {
		status += "  " + m.interview.Role
	}

	header := statusStyle.Width(m.width).Render(status)
	footer := helpStyle.Render("s start/restart  e end  q quit")
	if m.err != nil {
		footer = errorStyle.Render(wordwrap.String(m.err.Error(), m.width))
	}

	return header + "\n" + m.viewport.View() + "\n" + footer
}
