package chatui

import "sync"

// ScrollState names the branches of the auto-scroll decision.
type ScrollState int

const (
	// ScrollIdle: no scroll is owed to the user.
	ScrollIdle ScrollState = iota
	// ScrollPendingUser: the user just sent a message; the next growth
	// while at the bottom snaps to the bottom anchor.
	ScrollPendingUser
	// ScrollPendingTyping: the typing indicator appeared; growth brings
	// it into view top-aligned.
	ScrollPendingTyping
	// ScrollPendingMessage: the response replaced the indicator; growth
	// brings the start of the newest message into view.
	ScrollPendingMessage
)

// ScrollAction is what the view should do after a content-height change.
type ScrollAction int

const (
	ScrollNone ScrollAction = iota
	// ScrollToBottom: snap to the very bottom anchor.
	ScrollToBottom
	// ScrollToTyping: top-align the typing indicator.
	ScrollToTyping
	// ScrollToLastMessage: top-align the start of the newest message so a
	// long reply reads from its beginning.
	ScrollToLastMessage
	// ShowNewMessages: surface the new-messages affordance instead of
	// moving the viewport.
	ShowNewMessages
)

// ScrollController decides the scroll target whenever the message pane's
// content grows, without fighting manual user scrolling.
type ScrollController struct {
	mu              sync.Mutex
	state           ScrollState
	lastHeight      int
	showAffordance  bool
	bottomThreshold int
}

// NewScrollController takes the at-bottom proximity threshold in lines.
func NewScrollController(bottomThreshold int) *ScrollController {
	return &ScrollController{bottomThreshold: bottomThreshold}
}

// Arm marks the next height growth as user-initiated, so it may snap to
// the bottom.
func (c *ScrollController) Arm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = ScrollPendingUser
}

// TypingChanged records the typing indicator toggling. The user-send
// branch outranks it and is left armed.
func (c *ScrollController) TypingChanged(typing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == ScrollPendingUser {
		return
	}
	if typing {
		c.state = ScrollPendingTyping
	} else if c.state == ScrollPendingTyping {
		c.state = ScrollPendingMessage
	}
}

// ContentChanged reports the new content height and the viewport's
// distance from the bottom, and returns the action to take. Branch
// precedence: user send, then typing indicator, then completed message,
// then the new-messages affordance.
func (c *ScrollController) ContentChanged(height, distanceFromBottom int) ScrollAction {
	c.mu.Lock()
	defer c.mu.Unlock()

	grew := height > c.lastHeight && c.lastHeight > 0
	c.lastHeight = height
	if !grew {
		return ScrollNone
	}

	atBottom := distanceFromBottom <= c.bottomThreshold

	switch c.state {
	case ScrollPendingUser:
		if atBottom {
			c.state = ScrollIdle
			c.showAffordance = false
			return ScrollToBottom
		}
	case ScrollPendingTyping:
		return ScrollToTyping
	case ScrollPendingMessage:
		c.state = ScrollIdle
		return ScrollToLastMessage
	}

	if !atBottom {
		c.showAffordance = true
		return ShowNewMessages
	}
	return ScrollNone
}

// Scrolled is the side observation on every scroll event: proximity to
// the bottom toggles the affordance's visibility.
func (c *ScrollController) Scrolled(distanceFromBottom int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showAffordance = distanceFromBottom > c.bottomThreshold
}

// ScrollToBottomRequested handles the explicit jump: the affordance click
// or a user send. arm=true re-arms the user-send branch for the next
// growth event.
func (c *ScrollController) ScrollToBottomRequested(arm bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if arm {
		c.state = ScrollPendingUser
	}
	c.showAffordance = false
}

func (c *ScrollController) ShowNewMessagesButton() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showAffordance
}

// State exposes the current branch, mainly for tests.
func (c *ScrollController) State() ScrollState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
