package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bharat-ai/bharatai/internal/domain"
)

const sidebarWidth = 28

var (
	sidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(lipgloss.Color("#3B4252"))

	selectedChatStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#88C0D0")).
				Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	userLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A3BE8C")).
			Bold(true)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#81A1C1")).
				Bold(true)

	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true)

	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#BF616A"))

	affordanceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EBCB8B")).
			Bold(true)
)

func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	sidebar := m.renderSidebar()
	pane := m.vp.View()

	var status strings.Builder
	if m.sending {
		status.WriteString(spinnerFrames[m.spinnerPos] + " ")
	}
	if m.statusText != "" {
		status.WriteString(dimStyle.Render(m.statusText))
	}
	if m.errText != "" {
		status.WriteString(errStyle.Render(m.errText))
	}
	if m.scroll.ShowNewMessagesButton() {
		status.WriteString("  " + affordanceStyle.Render("↓ New messages (Ctrl+B)"))
	}

	right := lipgloss.JoinVertical(lipgloss.Left,
		pane,
		status.String(),
		m.input.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, right)
}

func (m *Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Chats"))
	b.WriteString("\n\n")

	chats := m.chats.Chats()
	if len(chats) == 0 {
		b.WriteString(dimStyle.Render("No chats yet"))
	}
	active := m.session.CurrentChatID()
	for i, c := range chats {
		title := c.Title
		if len([]rune(title)) > sidebarWidth-4 {
			title = string([]rune(title)[:sidebarWidth-5]) + "…"
		}
		line := title
		if c.ID == active {
			line = "● " + line
		} else {
			line = "  " + line
		}
		if m.focus == focusSidebar && i == m.selected {
			line = selectedChatStyle.Render(line)
		}
		b.WriteString(line + "\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %d messages", c.MessageCount)) + "\n")
	}

	height := m.height - 2
	return sidebarStyle.Height(height).Render(b.String())
}

// renderMessages renders the conversation and returns the content along
// with the line offsets of the newest message and the typing indicator,
// which the scroll controller uses as anchors.
func (m *Model) renderMessages() (content string, lastMessageLine, typingLine int) {
	var b strings.Builder
	lineCount := 0

	write := func(s string) {
		b.WriteString(s)
		lineCount += strings.Count(s, "\n")
	}

	messages := m.session.Messages()
	for i, msg := range messages {
		if i == len(messages)-1 {
			lastMessageLine = lineCount
		}

		label := assistantLabelStyle.Render("AI")
		if msg.Role == domain.RoleUser {
			label = userLabelStyle.Render("You")
		}
		write(label + "\n")

		body := wrap(msg.Content, m.vp.Width-2)
		if msg.Pending {
			body = pendingStyle.Render(body)
		}
		write(body + "\n")

		if msg.Image != nil {
			write(dimStyle.Render("[image] "+msg.Image.URL) + "\n")
		}
		write("\n")
	}

	if m.session.IsTyping() {
		typingLine = lineCount
		write(pendingStyle.Render(spinnerFrames[m.spinnerPos]+" AI is typing...") + "\n")
	}

	return strings.TrimRight(b.String(), "\n"), lastMessageLine, typingLine
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}
