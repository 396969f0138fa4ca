package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sevigo/code-review-api/internal/config"
	"github.com/sevigo/code-review-api/internal/core"
	"github.com/sevigo/code-review-api/internal/gitutil"
	"github.com/sevigo/code-review-api/internal/storage"
)

const banner = `
╔══════════════════════════════════════════════════════╗
║                                                      ║
║     AI CODE REVIEW  ·  pull requests, file by file   ║
║                                                      ║
╚══════════════════════════════════════════════════════╝
`

const helpText = `COMMANDS:
  /review <target>   review a pull request (URL, owner/name#N or owner/name N)
  /files             list the files of the last review
  /show <file>       print the review of one file
  /history <target>  show the latest saved review for a pull request
  /help              show this help
  /exit              quit`

type model struct {
	styles styles
	cfg    *config.Config

	reviewer core.PullRequestReviewer
	store    storage.Store
	cleanup  func()

	viewport  viewport.Model
	textarea  textarea.Model
	spinner   spinner.Model
	isLoading bool
	ready     bool

	history []string
	last    *core.PullRequestReview
}

func initialModel(cfg *config.Config, theme ThemeName) *model {
	styles := GetTheme(theme)
	ta := textarea.New()
	ta.Placeholder = "Enter a command or a pull request URL..."
	ta.Focus()
	ta.Prompt = styles.prompt.Render("► ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = styles.ascii

	return &model{
		styles:    styles,
		cfg:       cfg,
		textarea:  ta,
		spinner:   sp,
		isLoading: true,
		history:   []string{styles.ascii.Render(banner), "", "⚙ Connecting to GitHub and the model backend..."},
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(initializePipelineCmd(m.cfg), m.spinner.Tick)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	m.spinner, spCmd = m.spinner.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.shutdown()
			return m, tea.Quit
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m, m.processCommand(input)
		}

	case pipelineReadyMsg:
		m.isLoading = false
		if msg.err != nil {
			fmt.Fprintf(os.Stderr, "ERROR initializing pipeline: %v\n", msg.err)
			m.appendLines("", m.styles.error.Render(msg.err.Error()))
			return m, nil
		}
		m.reviewer = msg.reviewer
		m.store = msg.store
		m.cleanup = msg.cleanup
		m.ready = true
		m.appendLines("", m.styles.success.Render("✓ SYSTEM ONLINE"), "", "Type /help for commands or paste a pull request URL.")
		return m, nil

	case reviewCompleteMsg:
		m.isLoading = false
		if msg.err != nil {
			m.appendLines("", m.styles.error.Render(fmt.Sprintf("REVIEW FAILED for %s#%d: %v", msg.request.Repo, msg.request.PRNumber, msg.err)))
			return m, nil
		}
		m.last = msg.result
		m.appendLines("", m.renderSummary(msg.result))
		if msg.saveErr != nil {
			m.appendLines(m.styles.warning.Render("⚠ review was not saved: " + msg.saveErr.Error()))
		}
		return m, nil

	case historyLoadedMsg:
		m.isLoading = false
		if msg.err != nil {
			m.appendLines("", m.styles.inactive.Render(fmt.Sprintf("No saved review for %s#%d: %v", msg.request.Repo, msg.request.PRNumber, msg.err)))
			return m, nil
		}
		m.appendLines("", m.renderHistory(msg.review))
		return m, nil

	case errorMsg:
		m.isLoading = false
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", msg.err)
		m.appendLines("", m.styles.error.Render("⚠ "+msg.err.Error()))
		return m, nil

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 8
		m.textarea.SetWidth(msg.Width - 10)
		m.viewport.SetContent(strings.Join(m.history, "\n"))
	}

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m *model) View() string {
	if !m.ready && m.isLoading {
		return fmt.Sprintf("\n  %s BOOTING SYSTEM...\n\n", m.spinner.View())
	}

	statusParts := []string{fmt.Sprintf("🤖 %s (%s)", m.cfg.AI.GeneratorModel, m.cfg.AI.LLMProvider)}
	statusParts = append(statusParts, fmt.Sprintf("WORKERS: %d", m.cfg.Review.Workers))
	if m.last != nil {
		statusParts = append(statusParts, fmt.Sprintf("LAST: %s#%d", m.last.Repo, m.last.PRNumber))
	} else {
		statusParts = append(statusParts, m.styles.inactive.Render("LAST: none"))
	}
	status := m.styles.inactive.Render(strings.Join(statusParts, " │ "))

	var loadingIndicator string
	if m.isLoading {
		loadingIndicator = " " + m.spinner.View() + " " + m.styles.success.Render("PROCESSING...")
	}

	return m.styles.app.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.styles.viewport.Render(m.viewport.View()),
			"",
			m.styles.footer.Render(
				lipgloss.JoinHorizontal(lipgloss.Left,
					m.textarea.View(),
					loadingIndicator,
				),
			),
			status,
		),
	)
}

func (m *model) processCommand(input string) tea.Cmd {
	m.appendLines(m.styles.prompt.Render("► ") + input)

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}
	command := parts[0]
	args := parts[1:]

	// A bare target is shorthand for /review.
	if !strings.HasPrefix(command, "/") {
		command, args = "/review", parts
	}

	switch command {
	case "/review", "/r":
		req, ok := m.parseTarget("/review", args)
		if !ok {
			return nil
		}
		m.isLoading = true
		m.appendLines("", m.styles.command.Render(fmt.Sprintf("→ Reviewing %s#%d with %d workers...", req.Repo, req.PRNumber, m.cfg.Review.Workers)))
		return tea.Batch(m.spinner.Tick, reviewPullRequestCmd(m.reviewer, m.store, req))

	case "/history":
		req, ok := m.parseTarget("/history", args)
		if !ok {
			return nil
		}
		m.isLoading = true
		return tea.Batch(m.spinner.Tick, loadHistoryCmd(m.store, req))

	case "/files", "/ls":
		if m.last == nil {
			m.appendLines(m.styles.inactive.Render("No review yet. Use '/review <target>' first."))
			return nil
		}
		m.appendLines(m.renderSummary(m.last))
		return nil

	case "/show":
		if len(args) != 1 {
			m.appendLines(m.styles.error.Render("USAGE: /show <file>"))
			return nil
		}
		if m.last == nil {
			m.appendLines(m.styles.inactive.Render("No review yet. Use '/review <target>' first."))
			return nil
		}
		outcome, ok := m.last.Outcomes[args[0]]
		if !ok {
			m.appendLines(m.styles.error.Render(fmt.Sprintf("File '%s' is not part of the last review. Use /files to list them.", args[0])))
			return nil
		}
		m.appendLines("", m.styles.outcome(outcome.Kind).Render(outcome.Filename), outcome.Message())
		return nil

	case "/help", "/h":
		m.appendLines("", helpText)
		return nil

	case "/exit", "/quit":
		m.shutdown()
		return tea.Quit

	default:
		m.appendLines(m.styles.error.Render(fmt.Sprintf("Unknown command: %s. Type /help for commands.", command)))
		return nil
	}
}

func (m *model) parseTarget(command string, args []string) (core.ReviewRequest, bool) {
	if !m.ready {
		m.appendLines(m.styles.error.Render("The review pipeline is not available."))
		return core.ReviewRequest{}, false
	}
	req, err := gitutil.ParseTarget(args)
	if err != nil {
		m.appendLines(m.styles.error.Render(fmt.Sprintf("USAGE: %s <target>: %v", command, err)))
		return core.ReviewRequest{}, false
	}
	return req, true
}

func (m *model) renderSummary(result *core.PullRequestReview) string {
	var b strings.Builder
	b.WriteString(m.styles.success.Render(fmt.Sprintf("✓ REVIEWED %s#%d", result.Repo, result.PRNumber)))
	if len(result.HeadSHA) >= 7 {
		b.WriteString(m.styles.inactive.Render(" @ " + result.HeadSHA[:7]))
	}
	for _, name := range sortedKeys(result.Outcomes) {
		o := result.Outcomes[name]
		fmt.Fprintf(&b, "\n  %s %s", m.styles.outcome(o.Kind).Render(fmt.Sprintf("[%s]", o.Kind)), name)
	}
	if len(result.Outcomes) == 0 {
		b.WriteString("\n  " + m.styles.inactive.Render("no changed files"))
	}
	b.WriteString("\n\n" + m.styles.inactive.Render("Use '/show <file>' to read a file's review."))
	return b.String()
}

func (m *model) renderHistory(review *core.Review) string {
	var b strings.Builder
	b.WriteString(m.styles.success.Render(fmt.Sprintf("SAVED REVIEW #%d for %s#%d", review.ID, review.RepoFullName, review.PRNumber)))
	b.WriteString(m.styles.inactive.Render(" (" + review.CreatedAt.Format("2006-01-02 15:04") + ")"))
	for _, name := range sortedKeys(review.Reviews) {
		fmt.Fprintf(&b, "\n\n%s\n%s", m.styles.prompt.Render(name), review.Reviews[name])
	}
	return b.String()
}

func (m *model) appendLines(lines ...string) {
	m.history = append(m.history, lines...)
	m.viewport.SetContent(strings.Join(m.history, "\n"))
	m.viewport.GotoBottom()
}

func (m *model) shutdown() {
	if m.cleanup != nil {
		m.cleanup()
		m.cleanup = nil
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
