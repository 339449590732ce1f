// Package dashboard renders the side-by-side provider comparison as a
// Bubble Tea terminal UI: one prompt, one column per backend, streaming
// responses, and a rubric table once the judge has scored both answers.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ossbench/internal/config"
	"ossbench/internal/ingest"
	"ossbench/internal/judge"
	"ossbench/internal/providers"
)

// viewState represents the current state of the dashboard's view.
type viewState int

const (
	// viewSetup is the state where the user enters a repository path.
	viewSetup viewState = iota
	// viewIngesting is the state while the repository is being ingested.
	viewIngesting
	// viewChat is the two-column comparison interface.
	viewChat
)

// chatMessage is a single message in a column's conversation.
type chatMessage struct {
	Role    string
	Content string
}

// column holds the streaming state for one provider.
type column struct {
	client      *providers.Client
	history     []chatMessage
	isStreaming bool
	err         error
	startTime   time.Time
	elapsed     time.Duration
	lastCode    string // fence-stripped final response of the last round
	eval        *judge.Evaluation
	evalErr     error
}

// Model is the main Bubble Tea model for the comparison dashboard.
type Model struct {
	cfg       *config.Config
	columns   []column
	judge     *judge.Judge
	ingester  *ingest.Ingester
	repoCtx   *ingest.Context
	reference string // optional ground-truth code for the judge

	state      viewState
	isLoading  bool
	isJudging  bool
	err        error
	textArea   textarea.Model
	viewport   viewport.Model
	spinner    spinner.Model
	program    *tea.Program
	width      int
	height     int
	startTime  time.Time
	setupInput textarea.Model
}

// ingestDoneMsg is sent when repository ingestion completes.
type ingestDoneMsg struct{ ctx *ingest.Context }

// ingestErrMsg is sent when repository ingestion fails.
type ingestErrMsg error

// streamChunkMsg carries one content delta for a column.
type streamChunkMsg struct {
	col     int
	content string
}

// streamEndMsg is sent when a column's stream completes.
type streamEndMsg struct {
	col      int
	response string
}

// streamErrMsg is sent when a column's stream fails.
type streamErrMsg struct {
	col int
	err error
}

// evalDoneMsg carries the rubric result for one column.
type evalDoneMsg struct {
	col int
	ev  *judge.Evaluation
}

// evalErrMsg is sent when judging a column fails.
type evalErrMsg struct {
	col int
	err error
}

// tickMsg drives the elapsed timers while loading.
type tickMsg time.Time

// New builds the dashboard model. repoPath may be empty, in which case the
// setup view asks for one. reference is optional ground-truth code passed
// to the judge.
func New(cfg *config.Config, j *judge.Judge, ing *ingest.Ingester, repoPath, reference string) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "What code would you like to generate?"
	ta.Prompt = "Ask Anything: "
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	setup := textarea.New()
	setup.Placeholder = "/path/to/repository"
	setup.Prompt = "Repository: "
	setup.ShowLineNumbers = false
	setup.CharLimit = -1
	setup.SetHeight(1)
	setup.KeyMap.InsertNewline.SetEnabled(false)
	setup.Focus()
	if repoPath != "" {
		setup.SetValue(repoPath)
	}

	columns := make([]column, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		columns = append(columns, column{client: providers.New(pc)})
	}

	return &Model{
		cfg:        cfg,
		columns:    columns,
		judge:      j,
		ingester:   ing,
		reference:  reference,
		state:      viewSetup,
		textArea:   ta,
		setupInput: setup,
		viewport:   viewport.New(100, 5),
		spinner:    s,
	}
}

// ingestCmd ingests the repository off the UI loop.
func (m *Model) ingestCmd(root string) tea.Cmd {
	return func() tea.Msg {
		ctx, err := m.ingester.Ingest(root)
		if err != nil {
			return ingestErrMsg(err)
		}
		return ingestDoneMsg{ctx: ctx}
	}
}

// streamCmd fires one streaming request per column for the same prompt.
func (m *Model) streamCmd(query string) tea.Cmd {
	return func() tea.Msg {
		prompt := providers.CodeGenPrompt(m.repoCtx.Content, query)
		for i := range m.columns {
			go func(col int, client *providers.Client) {
				response, err := client.Stream(context.Background(), prompt, func(delta string) {
					m.program.Send(streamChunkMsg{col: col, content: delta})
				})
				if err != nil {
					m.program.Send(streamErrMsg{col: col, err: err})
					return
				}
				m.program.Send(streamEndMsg{col: col, response: response})
			}(i, m.columns[i].client)
		}
		return nil
	}
}

// evalCmd judges the last generated code of every column.
func (m *Model) evalCmd() tea.Cmd {
	return func() tea.Msg {
		for i := range m.columns {
			go func(col int, code string) {
				ev, err := m.judge.Evaluate(context.Background(), code, m.reference)
				if err != nil {
					m.program.Send(evalErrMsg{col: col, err: err})
					return
				}
				m.program.Send(evalDoneMsg{col: col, ev: ev})
			}(i, m.columns[i].lastCode)
		}
		return nil
	}
}

// tickCmd sends a tickMsg at a regular interval for timer updates.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the spinner animation.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update is the central update function handling all dashboard messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state != viewSetup && !m.textArea.Focused() {
				return m, tea.Quit
			}
		case "ctrl+e":
			if m.state == viewChat && !m.isLoading && !m.isJudging && m.allColumnsHaveCode() {
				m.isJudging = true
				for i := range m.columns {
					m.columns[i].eval = nil
					m.columns[i].evalErr = nil
				}
				cmds = append(cmds, m.spinner.Tick, m.evalCmd(), tickCmd())
				return m, tea.Batch(cmds...)
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.textArea.SetWidth(msg.Width - 3)
		m.setupInput.SetWidth(msg.Width - 3)
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 10

	case ingestDoneMsg:
		m.isLoading = false
		m.repoCtx = msg.ctx
		m.state = viewChat
		m.textArea.Focus()
		return m, nil

	case ingestErrMsg:
		m.isLoading = false
		m.err = msg
		m.state = viewSetup
		m.setupInput.Focus()
		return m, nil

	case streamChunkMsg:
		if msg.col < len(m.columns) {
			c := &m.columns[msg.col]
			if n := len(c.history); n > 0 && c.history[n-1].Role == "assistant" {
				c.history[n-1].Content += msg.content
			} else {
				c.history = append(c.history, chatMessage{Role: "assistant", Content: msg.content})
			}
		}
		return m, nil

	case streamEndMsg:
		if msg.col < len(m.columns) {
			c := &m.columns[msg.col]
			c.isStreaming = false
			c.elapsed = time.Since(c.startTime)
			c.lastCode = providers.StripFences(msg.response)
			// Normalize the rendered history to the cleaned response.
			if n := len(c.history); n > 0 && c.history[n-1].Role == "assistant" {
				c.history[n-1].Content = c.lastCode
			}
		}
		m.finishRoundIfDone()
		return m, nil

	case streamErrMsg:
		if msg.col < len(m.columns) {
			c := &m.columns[msg.col]
			c.err = msg.err
			c.isStreaming = false
			c.elapsed = time.Since(c.startTime)
		}
		m.finishRoundIfDone()
		return m, nil

	case evalDoneMsg:
		if msg.col < len(m.columns) {
			m.columns[msg.col].eval = msg.ev
		}
		m.finishJudgingIfDone()
		return m, nil

	case evalErrMsg:
		if msg.col < len(m.columns) {
			m.columns[msg.col].evalErr = msg.err
		}
		m.finishJudgingIfDone()
		return m, nil

	case tickMsg:
		if m.isLoading || m.isJudging {
			return m, tickCmd()
		}
		return m, nil
	}

	switch m.state {
	case viewSetup:
		m.setupInput, cmd = m.setupInput.Update(msg)
		cmds = append(cmds, cmd)
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "enter" {
			root := strings.TrimSpace(m.setupInput.Value())
			if root != "" {
				m.state = viewIngesting
				m.isLoading = true
				m.err = nil
				m.startTime = time.Now()
				cmds = append(cmds, m.spinner.Tick, m.ingestCmd(root), tickCmd())
			}
		}

	case viewChat:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		m.textArea, cmd = m.textArea.Update(msg)
		cmds = append(cmds, cmd)

		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "enter" && !m.isLoading {
			query := strings.TrimSpace(m.textArea.Value())
			if query != "" {
				userMsg := chatMessage{Role: "user", Content: query}
				for i := range m.columns {
					m.columns[i].history = append(m.columns[i].history, userMsg)
					m.columns[i].isStreaming = true
					m.columns[i].err = nil
					m.columns[i].eval = nil
					m.columns[i].evalErr = nil
					m.columns[i].startTime = time.Now()
				}
				m.textArea.Reset()
				m.textArea.Blur()
				m.isLoading = true
				m.startTime = time.Now()
				cmds = append(cmds, m.spinner.Tick, m.streamCmd(query), tickCmd())
			}
		}
	}

	if m.isLoading || m.isJudging {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// allColumnsHaveCode reports whether every column has a judged-able
// response from the last round.
func (m *Model) allColumnsHaveCode() bool {
	for i := range m.columns {
		if m.columns[i].lastCode == "" {
			return false
		}
	}
	return len(m.columns) > 0
}

func (m *Model) finishRoundIfDone() {
	for i := range m.columns {
		if m.columns[i].isStreaming {
			return
		}
	}
	m.isLoading = false
	m.textArea.Focus()
}

func (m *Model) finishJudgingIfDone() {
	for i := range m.columns {
		if m.columns[i].eval == nil && m.columns[i].evalErr == nil {
			return
		}
	}
	m.isJudging = false
}

// View renders the dashboard based on its current state.
func (m *Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.state {
	case viewSetup:
		return m.setupView()
	case viewIngesting:
		timer := fmt.Sprintf("%.1f", time.Since(m.startTime).Seconds())
		return fmt.Sprintf("\n  %s Ingesting repository... %ss\n", m.spinner.View(), timer)
	case viewChat:
		return m.chatView()
	default:
		return "Unknown state"
	}
}

// setupView renders the repository path prompt.
func (m *Model) setupView() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	b.WriteString(titleStyle.Render("gpt-oss-120b: vLLM vs OpenRouter Inference Comparison") + "\n\n")
	b.WriteString("Enter the path of a repository to use as generation context.\n\n")
	b.WriteString(m.setupInput.View() + "\n")

	if m.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		b.WriteString("\n" + errStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n")
	}

	help := lipgloss.NewStyle().Faint(true)
	b.WriteString("\n" + help.Render("Enter: ingest  Ctrl+C: quit"))

	return lipgloss.NewStyle().Margin(1, 2).Render(b.String())
}

// chatView renders the two-column comparison: headers, per-column
// conversation, optional rubric tables, and the input line.
func (m *Model) chatView() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	b.WriteString(headerStyle.Render("Inference Comparison"))
	b.WriteString(lipgloss.NewStyle().Faint(true).Render(" (enter to send, ctrl+e to evaluate, q to quit)") + "\n\n")

	cols := len(m.columns)
	colWidth := (m.width - 2*cols) / cols

	// Column headers: provider name and model.
	var headerCells []string
	for i := range m.columns {
		c := &m.columns[i]
		label := fmt.Sprintf("%s\n%s", c.client.Name(), c.client.Model())
		cellStyle := lipgloss.NewStyle().
			Width(colWidth).
			Height(2).
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("238")).
			Align(lipgloss.Center).
			Bold(true)
		headerCells = append(headerCells, cellStyle.Render(label))
	}
	headerRow := lipgloss.JoinHorizontal(lipgloss.Top, headerCells...)
	b.WriteString(headerRow + "\n")

	// Conversation columns.
	chatHeight := m.height - lipgloss.Height(headerRow) - lipgloss.Height(m.textArea.View()) - 8
	var cells []string
	for i := range m.columns {
		cells = append(cells, m.renderColumn(i, colWidth, chatHeight))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...) + "\n")

	// Rubric tables once judged.
	if m.anyEvaluated() {
		var evalCells []string
		for i := range m.columns {
			evalCells = append(evalCells, m.renderEval(i, colWidth))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, evalCells...) + "\n")
	}

	// Input line or streaming/judging indicators.
	switch {
	case m.isLoading:
		var indicators []string
		for i := range m.columns {
			c := &m.columns[i]
			if c.isStreaming {
				timer := fmt.Sprintf("%.1f", time.Since(c.startTime).Seconds())
				indicators = append(indicators, fmt.Sprintf("%s %s responding... %ss", m.spinner.View(), c.client.Name(), timer))
			}
		}
		b.WriteString("\n" + strings.Join(indicators, "\n"))
	case m.isJudging:
		b.WriteString(fmt.Sprintf("\n%s Evaluating generated code...", m.spinner.View()))
	default:
		b.WriteString("\n" + m.textArea.View())
	}

	return b.String()
}

// renderColumn renders one provider's conversation cell.
func (m *Model) renderColumn(i, width, height int) string {
	c := &m.columns[i]
	var body strings.Builder

	if c.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		body.WriteString(errStyle.Render(fmt.Sprintf("Error: %v", c.err)))
	} else {
		userStyle := lipgloss.NewStyle().Bold(true)
		assistantStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
		for _, msg := range c.history {
			var role string
			if msg.Role == "assistant" {
				role = assistantStyle.Render("Assistant: ")
			} else {
				role = userStyle.Render("You: ")
			}
			wrapped := lipgloss.NewStyle().Width(width - lipgloss.Width(role) - 2).Render(msg.Content)
			body.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, role, wrapped) + "\n")
		}
		if !c.isStreaming && c.elapsed > 0 {
			meta := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
			body.WriteString(meta.Render(fmt.Sprintf(">>> [Total Duration: %.1fs]", c.elapsed.Seconds())))
		}
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("238")).
		Padding(0, 1).
		Render(body.String())
}

// renderEval renders one provider's rubric table cell.
func (m *Model) renderEval(i, width int) string {
	c := &m.columns[i]
	var body strings.Builder

	switch {
	case c.evalErr != nil:
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
		body.WriteString(errStyle.Render(fmt.Sprintf("Evaluation error: %v", c.evalErr)))
	case c.eval != nil:
		title := lipgloss.NewStyle().Bold(true)
		body.WriteString(title.Render("Evaluation") + "\n")
		rows := []struct {
			name   string
			metric judge.MetricScore
		}{
			{"Correctness", c.eval.Correctness},
			{"Readability", c.eval.Readability},
			{"Best Practices", c.eval.BestPractices},
		}
		for _, r := range rows {
			body.WriteString(fmt.Sprintf("%-15s %5.2f  %s\n", r.name, r.metric.Score, r.metric.Reason))
		}
		overall := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
		body.WriteString(overall.Render(fmt.Sprintf("%-15s %5.2f  Final weighted average", "Overall Score", c.eval.Overall)))
	}

	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("238")).
		Padding(0, 1).
		Render(body.String())
}

func (m *Model) anyEvaluated() bool {
	for i := range m.columns {
		if m.columns[i].eval != nil || m.columns[i].evalErr != nil {
			return true
		}
	}
	return false
}

// Start runs the dashboard until the user quits.
func Start(cfg *config.Config, j *judge.Judge, ing *ingest.Ingester, repoPath, reference string) error {
	m := New(cfg, j, ing, repoPath, reference)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	m.program = p

	_, err := p.Run()
	return err
}
