package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/diogo/leety/internal/chat"
	"github.com/diogo/leety/internal/history"
	"github.com/diogo/leety/internal/models"
	"github.com/diogo/leety/internal/relay"
	"github.com/diogo/leety/internal/render"
)

// WelcomeText is shown while the conversation is empty
const WelcomeText = "Welcome to Leety! How can I help you today?"

// copiedFor is how long the copy acknowledgment stays visible
const copiedFor = 2 * time.Second

// Backend is the relay surface the panel talks to. *relay.Client implements it.
type Backend interface {
	GetAPIKey(ctx context.Context) (string, error)
	SaveAPIKey(ctx context.Context, key string) error
	VerifyAPIKey(ctx context.Context, key string) (bool, error)
	Chat(ctx context.Context, userPrompt string) (relay.ChatResponse, error)
}

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	keyLoadedMsg struct {
		key string
		err error
	}
	keyVerifiedMsg struct {
		outcome chat.KeyOutcome
		err     error
	}
	chatReplyMsg struct {
		resp relay.ChatResponse
		err  error
	}
	copiedExpiredMsg struct {
		seq int
	}
	exportedMsg struct {
		path string
		err  error
	}
)

// PanelOpenedMsg surfaces the panel for a page (launcher click)
type PanelOpenedMsg struct {
	Sender relay.Sender
}

// Options configures the panel
type Options struct {
	Model            string
	Markdown         render.Options
	Transcripts      *history.Store
	TranscriptFormat history.Format
	// Clipboard writes text to the system clipboard. Defaults to atotto/clipboard.
	Clipboard func(string) error
	Logger    zerolog.Logger
}

// Model represents the TUI state
type Model struct {
	ctx     context.Context
	backend Backend
	opts    Options
	machine *chat.Machine

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	keyInput textinput.Model
	spinner  spinner.Model

	// State
	ready          bool
	animationFrame int
	openedFrom     *relay.Sender
	notice         string
	copied         bool
	copySeq        int

	// Dimensions
	width  int
	height int
}

// NewModel creates the panel model. The conversation starts empty and the
// key modal stays up until the stored key has been looked up.
func NewModel(ctx context.Context, backend Backend, opts Options) Model {
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Markdown == (render.Options{}) {
		opts.Markdown = render.DefaultOptions()
	}
	if opts.TranscriptFormat == "" {
		opts.TranscriptFormat = history.FormatMarkdown
	}

	// Create textarea for input
	ta := textarea.New()
	ta.Placeholder = "Ask about this problem... (Alt+Enter for a new line)"
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	// Style the textarea
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(st.theme.Text)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(st.theme.TextDim)
	ta.BlurredStyle = ta.FocusedStyle

	ki := textinput.New()
	ki.Placeholder = "Gemini API key"
	ki.EchoMode = textinput.EchoPassword
	ki.EchoCharacter = '•'
	ki.Focus()

	// Create spinner
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = st.loading

	return Model{
		ctx:      ctx,
		backend:  backend,
		opts:     opts,
		machine:  chat.New(),
		textarea: ta,
		keyInput: ki,
		spinner:  s,
	}
}

// Init looks up the stored key
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.loadKey(),
	)
}

// State returns the chat state
func (m Model) State() chat.State {
	return m.machine.State()
}

// Messages returns the conversation
func (m Model) Messages() []models.Message {
	return m.machine.Messages()
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case keyLoadedMsg:
		if msg.err != nil {
			m.opts.Logger.Warn().Err(msg.err).Msg("failed to load api key")
		}
		m.machine.KeyLoaded(msg.key, msg.err)
		return m, nil

	case keyVerifiedMsg:
		m.machine.ResolveKey(msg.outcome, msg.err)
		if m.machine.State() == chat.Idle {
			m.keyInput.Reset()
			m.notice = "API key saved"
		}
		return m, nil

	case chatReplyMsg:
		if msg.err != nil {
			m.machine.Resolve("Error: "+msg.err.Error(), true)
		} else {
			m.machine.Resolve(msg.resp.Output, msg.resp.Error)
		}
		m.updateViewport()
		m.viewport.GotoBottom()
		// The error message is in the viewport now
		m.machine.AckError()
		return m, nil

	case PanelOpenedMsg:
		sender := msg.Sender
		m.openedFrom = &sender
		return m, nil

	case copiedExpiredMsg:
		if msg.seq == m.copySeq {
			m.copied = false
		}
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.notice = "Export failed: " + msg.err.Error()
		} else {
			m.notice = "Saved transcript to " + msg.path
		}
		return m, nil

	case spinner.TickMsg:
		if m.machine.State() == chat.AwaitingResponse {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.machine.State() == chat.AwaitingResponse {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.machine.State() == chat.AwaitingKey {
			return m.updateKeyModal(msg)
		}
		if next, cmd, handled := m.handleChatKey(msg); handled {
			return next, cmd
		}
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if m.machine.State() == chat.Idle {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 3 // Header panel with border
	inputHeight := 4  // Input panel with border
	statusHeight := 1 // Status bar
	bannerHeight := 1

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - bannerHeight - 2
	if vpHeight < 5 {
		vpHeight = 5
	}

	contentWidth := m.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
	m.keyInput.Width = contentWidth - 12
	m.updateViewport()
}

// updateKeyModal handles input while no key is stored
func (m Model) updateKeyModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "enter":
		candidate := strings.TrimSpace(m.keyInput.Value())
		if !m.machine.BeginKeySubmit(candidate) {
			return m, nil
		}
		return m, m.verifyKey(candidate)
	}

	if m.machine.Verifying() {
		return m, nil
	}
	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

// handleChatKey handles the chat shortcuts. handled is false when the key
// should reach the textarea.
func (m Model) handleChatKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit, true

	case "alt+enter":
		if m.machine.State() == chat.Idle {
			m.textarea.InsertString("\n")
		}
		return m, nil, true

	case "ctrl+y":
		next, cmd := m.copyLastCode()
		return next, cmd, true

	case "enter":
		input := strings.TrimSpace(m.textarea.Value())
		if input == "" || m.machine.State() != chat.Idle {
			return m, nil, true
		}

		switch input {
		case "/exit", "/quit":
			return m, tea.Quit, true
		case "/clear":
			m.textarea.Reset()
			if m.machine.Clear() {
				m.openedFrom = nil
				m.notice = ""
				m.updateViewport()
			}
			return m, nil, true
		case "/export":
			m.textarea.Reset()
			return m, m.exportTranscript(), true
		}

		prompt := m.textarea.Value()
		if !m.machine.Submit(prompt) {
			return m, nil, true
		}
		m.textarea.Reset()
		m.notice = ""
		m.animationFrame = 0
		m.updateViewport()
		m.viewport.GotoBottom()

		return m, tea.Batch(
			m.sendChat(prompt),
			m.spinner.Tick,
			animationTick(),
		), true
	}
	return m, nil, false
}

// copyLastCode copies the newest code block of the newest answer
func (m Model) copyLastCode() (Model, tea.Cmd) {
	last, ok := m.machine.LastAssistant()
	if !ok || last.Kind != models.KindMarkdown {
		m.notice = "No code to copy"
		return m, nil
	}
	block, ok := render.LastCodeBlock(last.Content)
	if !ok {
		m.notice = "No code to copy"
		return m, nil
	}
	if err := m.opts.Clipboard(block.Text); err != nil {
		m.notice = "Copy failed: " + err.Error()
		return m, nil
	}

	m.notice = ""
	m.copied = true
	m.copySeq++
	seq := m.copySeq
	return m, tea.Tick(copiedFor, func(time.Time) tea.Msg {
		return copiedExpiredMsg{seq: seq}
	})
}

// loadKey asks the relay for the stored key
func (m Model) loadKey() tea.Cmd {
	return func() tea.Msg {
		key, err := m.backend.GetAPIKey(m.ctx)
		return keyLoadedMsg{key: key, err: err}
	}
}

// verifyKey checks the candidate and saves it when accepted
func (m Model) verifyKey(candidate string) tea.Cmd {
	return func() tea.Msg {
		ok, err := m.backend.VerifyAPIKey(m.ctx, candidate)
		if err != nil {
			return keyVerifiedMsg{outcome: chat.KeyFailed, err: err}
		}
		if !ok {
			return keyVerifiedMsg{outcome: chat.KeyRejected}
		}
		if err := m.backend.SaveAPIKey(m.ctx, candidate); err != nil {
			return keyVerifiedMsg{outcome: chat.KeyFailed, err: err}
		}
		return keyVerifiedMsg{outcome: chat.KeyAccepted}
	}
}

// sendChat runs one chat turn through the relay
func (m Model) sendChat(prompt string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.backend.Chat(m.ctx, prompt)
		return chatReplyMsg{resp: resp, err: err}
	}
}

// exportTranscript writes the conversation to the transcripts directory
func (m Model) exportTranscript() tea.Cmd {
	if m.machine.Len() == 0 {
		return func() tea.Msg {
			return exportedMsg{err: fmt.Errorf("nothing to export")}
		}
	}
	if m.opts.Transcripts == nil {
		return func() tea.Msg {
			return exportedMsg{err: fmt.Errorf("no transcripts directory configured")}
		}
	}

	var title, page string
	if m.openedFrom != nil {
		title, page = m.openedFrom.Title, m.openedFrom.URL
	}
	t := history.New(title, page, m.opts.Model, m.machine.Messages())
	store, format := m.opts.Transcripts, m.opts.TranscriptFormat
	return func() tea.Msg {
		path, err := store.Save(t, format)
		return exportedMsg{path: path, err: err}
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return st.loading.Render("  Initializing...")
	}

	if m.machine.State() == chat.AwaitingKey {
		return m.renderKeyModal()
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		st.title.Render("✦ Leety"),
		st.hint.Render("  •  "),
		st.subtitle.Render(m.opts.Model),
	)
	sections = append(sections, st.header.Width(contentWidth).Render(headerContent))

	if m.openedFrom != nil {
		sections = append(sections, st.banner.Render("Opened from "+m.openedFrom.Title))
	}

	// Messages
	var messagesContent string
	if m.machine.Len() == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, st.messages.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	// Input
	var inputContent string
	if m.machine.State() == chat.AwaitingResponse {
		inputContent = m.renderLoadingAnimation()
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			st.inputLabel.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, st.inputPanel.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderKeyModal renders the API key prompt
func (m Model) renderKeyModal() string {
	width := m.width - 8
	if width < 40 {
		width = 40
	}

	var content strings.Builder
	content.WriteString(st.modalTitle.Render("Enter your Gemini API key"))
	content.WriteString("\n")
	content.WriteString(st.modalText.Render("The key is verified before it is saved."))
	content.WriteString("\n\n")
	content.WriteString(m.keyInput.View())
	content.WriteString("\n\n")

	switch {
	case m.machine.Verifying():
		content.WriteString(st.loading.Render(chat.MsgVerifying))
	case m.machine.KeyError() != "":
		content.WriteString(st.modalError.Render(m.machine.KeyError()))
	default:
		content.WriteString(st.hint.Render("Enter to save • Esc to quit"))
	}

	return st.modal.Width(width).Render(content.String())
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		st.welcomeIcon.Width(width).Render("✦"),
		"",
		st.welcomeTitle.Width(width).Render(WelcomeText),
		"",
		st.welcome.Width(width).Render("Ask about the problem open in your browser"),
	)

	// Center vertically
	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderLoadingAnimation renders a colorful animated loading indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinIdx := frame % len(chars)
	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 20
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	text := lipgloss.NewStyle().Foreground(st.theme.Text).Render(" Reading the problem and thinking ")
	return fmt.Sprintf("%s %s %s", spin, bar.String(), text)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	if m.copied {
		return st.status.Width(width).Align(lipgloss.Center).Render(st.notice.Render("Copied!"))
	}
	if m.notice != "" {
		return st.status.Width(width).Align(lipgloss.Center).Render(st.notice.Render(m.notice))
	}

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Alt+Enter", "Newline"},
		{"Ctrl+Y", "Copy code"},
		{"/export", "Save"},
		{"Esc", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, lipgloss.JoinHorizontal(
			lipgloss.Center,
			st.statusKey.Render(s.key),
			st.statusDesc.Render(" "+s.desc),
		))
	}

	return st.status.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	for i, msg := range m.machine.Messages() {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(m.renderMessage(msg, bubbleWidth))
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

func (m Model) renderMessage(msg models.Message, width int) string {
	if !msg.IsAssistant() {
		return st.userLabel.Render("⬤ You") + "\n" + st.userBubble.Width(width).Render(msg.Content)
	}

	label := st.assistantLabel.Render("✦ Leety")
	switch {
	case msg.Pending:
		return label + "\n" + st.assistantBubble.Width(width).Render(m.spinner.View()+" "+msg.Content)
	case msg.Kind == models.KindHTMLError:
		return label + "\n" + st.errorBubble.Width(width).Render(msg.Content)
	}

	rendered := render.Message(msg, m.opts.Markdown.WithWidth(width-4))
	return label + "\n" + st.assistantBubble.Width(width).Render(strings.TrimRight(rendered, "\n"))
}

// Panel runs the model as a bubbletea program. It implements relay.Host so
// a launcher click reaches the running panel.
type Panel struct {
	program *tea.Program
}

// NewPanel wraps m in a program
func NewPanel(m Model, opts ...tea.ProgramOption) *Panel {
	return &Panel{program: tea.NewProgram(m, opts...)}
}

// Run blocks until the panel exits
func (p *Panel) Run() error {
	_, err := p.program.Run()
	return err
}

// OpenSidePanel shows the opened-from banner for sender
func (p *Panel) OpenSidePanel(_ context.Context, sender relay.Sender) error {
	p.program.Send(PanelOpenedMsg{Sender: sender})
	return nil
}

var _ relay.Host = (*Panel)(nil)
