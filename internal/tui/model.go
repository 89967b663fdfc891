package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bharat-ai/bharatai/internal/chatui"
	"github.com/bharat-ai/bharatai/internal/config"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

type spinMsg struct{}

type turnDoneMsg struct {
	outcome chatui.TurnOutcome
}

type chatsLoadedMsg struct{ err error }

type chatLoadedMsg struct{ err error }

type chatDeletedMsg struct{ err error }

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Model is the terminal chat client. All conversation state lives in the
// chatui engine; the model only renders it and translates key events.
type Model struct {
	orc     *chatui.Orchestrator
	session *chatui.Session
	chats   *chatui.ChatList
	scroll  *chatui.ScrollController

	input    textarea.Model
	vp       viewport.Model
	width    int
	height   int
	ready    bool
	focus    focusArea
	selected int

	attachment *chatui.Attachment
	sending    bool
	lastTyping bool
	spinnerPos int
	statusText string
	errText    string
}

func NewModel(orc *chatui.Orchestrator, session *chatui.Session, chats *chatui.ChatList) *Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message... (Enter to send, Ctrl+G image mode, Ctrl+N new chat)"
	ta.Focus()
	ta.CharLimit = 8000
	ta.SetHeight(2)
	ta.Prompt = "▍ "
	ta.ShowLineNumbers = false
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()

	return &Model{
		orc:     orc,
		session: session,
		chats:   chats,
		scroll:  chatui.NewScrollController(config.BottomThresholdLines),
		input:   ta,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.refreshChatsCmd(), m.tick())
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg {
		return spinMsg{}
	})
}

func (m *Model) refreshChatsCmd() tea.Cmd {
	return func() tea.Msg {
		return chatsLoadedMsg{err: m.orc.RefreshChats(context.Background())}
	}
}

func (m *Model) sendCmd(text string, attachment *chatui.Attachment) tea.Cmd {
	m.scroll.Arm()
	return func() tea.Msg {
		if m.session.ImageGenMode() {
			return turnDoneMsg{outcome: m.orc.GenerateImage(context.Background(), text)}
		}
		return turnDoneMsg{outcome: m.orc.SendMessage(context.Background(), text, attachment)}
	}
}

func (m *Model) loadChatCmd(chatID string) tea.Cmd {
	return func() tea.Msg {
		return chatLoadedMsg{err: m.orc.LoadChat(context.Background(), chatID)}
	}
}

func (m *Model) deleteChatCmd(chatID string) tea.Cmd {
	return func() tea.Msg {
		return chatDeletedMsg{err: m.orc.DeleteChat(context.Background(), chatID)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpWidth := m.width - sidebarWidth - 3
		vpHeight := m.height - m.input.Height() - 4
		if !m.ready {
			m.vp = viewport.New(vpWidth, vpHeight)
			m.ready = true
		} else {
			m.vp.Width = vpWidth
			m.vp.Height = vpHeight
		}
		m.input.SetWidth(vpWidth)
		m.syncContent()

	case spinMsg:
		m.spinnerPos = (m.spinnerPos + 1) % len(spinnerFrames)
		m.observeTyping()
		m.syncContent()
		cmds = append(cmds, m.tick())

	case turnDoneMsg:
		m.sending = false
		m.statusText = ""
		if msg.outcome.Err != nil {
			m.errText = msg.outcome.Err.Message
		} else {
			m.errText = ""
		}
		m.observeTyping()
		m.syncContent()

	case chatsLoadedMsg:
		if msg.err != nil {
			m.errText = "Failed to load chats"
		}

	case chatLoadedMsg:
		if msg.err != nil {
			m.errText = "Failed to load chat"
		} else {
			m.errText = ""
			m.vp.GotoBottom()
			m.scroll.ScrollToBottomRequested(false)
		}
		m.syncContent()

	case chatDeletedMsg:
		if msg.err != nil {
			m.errText = "Failed to delete chat"
		}
		m.selected = 0
		m.syncContent()

	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		if m.attachment != nil {
			m.attachment.Release()
		}
		return tea.Quit

	case "tab":
		if m.focus == focusInput {
			m.focus = focusSidebar
			m.input.Blur()
		} else {
			m.focus = focusInput
			m.input.Focus()
		}
		return nil

	case "ctrl+n":
		m.orc.NewChat()
		m.errText = ""
		m.syncContent()
		return nil

	case "ctrl+g":
		enabled := m.session.ToggleImageGenMode()
		if enabled {
			m.statusText = "Image generation mode"
		} else {
			m.statusText = ""
		}
		return nil

	case "ctrl+r":
		return m.refreshChatsCmd()

	case "ctrl+b":
		m.vp.GotoBottom()
		m.scroll.ScrollToBottomRequested(false)
		return nil

	case "pgup", "pgdown":
		if msg.String() == "pgup" {
			m.vp.HalfViewUp()
		} else {
			m.vp.HalfViewDown()
		}
		m.scroll.Scrolled(m.distanceFromBottom())
		return nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < m.chats.Len()-1 {
			m.selected++
		}
	case "enter":
		chats := m.chats.Chats()
		if m.selected < len(chats) {
			return m.loadChatCmd(chats[m.selected].ID)
		}
	case "d", "delete":
		chats := m.chats.Chats()
		if m.selected < len(chats) {
			return m.deleteChatCmd(chats[m.selected].ID)
		}
	}
	return nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" && m.attachment == nil {
			return nil
		}
		if m.sending {
			return nil
		}

		if path, ok := strings.CutPrefix(text, "/attach "); ok {
			m.setAttachment(strings.TrimSpace(path))
			m.input.Reset()
			return nil
		}

		attachment := m.attachment
		m.attachment = nil
		m.input.Reset()
		m.sending = true
		m.statusText = "Thinking..."
		m.errText = ""
		return m.sendCmd(text, attachment)

	case "esc":
		if m.attachment != nil {
			m.attachment.Release()
			m.attachment = nil
			m.statusText = ""
			return nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// setAttachment stages a local image, releasing any previous one.
func (m *Model) setAttachment(path string) {
	if m.attachment != nil {
		m.attachment.Release()
	}
	m.attachment = chatui.NewAttachment(path, nil)
	m.statusText = "Attached: " + path
}

// observeTyping feeds typing-indicator transitions into the scroll
// controller.
func (m *Model) observeTyping() {
	typing := m.session.IsTyping()
	if typing != m.lastTyping {
		m.scroll.TypingChanged(typing)
		m.lastTyping = typing
	}
}

func (m *Model) distanceFromBottom() int {
	return m.vp.TotalLineCount() - (m.vp.YOffset + m.vp.Height)
}

// syncContent re-renders the message pane and applies whatever scroll
// action the controller decides for the new content height.
func (m *Model) syncContent() {
	if !m.ready {
		return
	}

	content, lastMessageLine, typingLine := m.renderMessages()
	m.vp.SetContent(content)

	action := m.scroll.ContentChanged(m.vp.TotalLineCount(), m.distanceFromBottom())
	switch action {
	case chatui.ScrollToBottom:
		m.vp.GotoBottom()
	case chatui.ScrollToTyping:
		m.vp.SetYOffset(typingLine)
	case chatui.ScrollToLastMessage:
		m.vp.SetYOffset(lastMessageLine)
	}
}
