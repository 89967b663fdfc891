package chatui

import "testing"

// prime feeds an initial height so the next change counts as growth.
func prime(c *ScrollController) {
	c.ContentChanged(10, 0)
}

func TestUserSendScrollsToBottomOnce(t *testing.T) {
	c := NewScrollController(3)
	prime(c)

	c.Arm()
	if got := c.ContentChanged(20, 0); got != ScrollToBottom {
		t.Fatalf("armed growth at bottom: expected ScrollToBottom, got %v", got)
	}

	// Flag must be cleared: further growth does not force bottom-scroll.
	if got := c.ContentChanged(30, 0); got == ScrollToBottom {
		t.Errorf("growth without re-arming forced a bottom scroll")
	}
}

func TestUserSendNotAtBottomDoesNotSnap(t *testing.T) {
	c := NewScrollController(3)
	prime(c)

	c.Arm()
	if got := c.ContentChanged(20, 50); got == ScrollToBottom {
		t.Errorf("armed but scrolled away: must not snap to bottom, got %v", got)
	}
	if !c.ShowNewMessagesButton() {
		t.Errorf("expected new-messages affordance when scrolled away")
	}
}

func TestTypingIndicatorAnchor(t *testing.T) {
	c := NewScrollController(3)
	prime(c)

	c.TypingChanged(true)
	if got := c.ContentChanged(20, 0); got != ScrollToTyping {
		t.Fatalf("unarmed growth while typing: expected ScrollToTyping, got %v", got)
	}
}

func TestResponseCompleteAnchorsLastMessage(t *testing.T) {
	c := NewScrollController(3)
	prime(c)

	c.TypingChanged(true)
	c.ContentChanged(20, 0)
	c.TypingChanged(false)

	if got := c.ContentChanged(40, 0); got != ScrollToLastMessage {
		t.Fatalf("growth after typing ended: expected ScrollToLastMessage, got %v", got)
	}
	if c.State() != ScrollIdle {
		t.Errorf("controller should settle back to idle, got %v", c.State())
	}
}

func TestUserSendOutranksTyping(t *testing.T) {
	c := NewScrollController(3)
	prime(c)

	c.Arm()
	c.TypingChanged(true)

	if got := c.ContentChanged(20, 0); got != ScrollToBottom {
		t.Fatalf("user-send branch must outrank typing branch, got %v", got)
	}
}

func TestScrolledAwayShowsAffordance(t *testing.T) {
	c := NewScrollController(3)
	prime(c)

	if got := c.ContentChanged(20, 200); got != ShowNewMessages {
		t.Fatalf("idle growth away from bottom: expected ShowNewMessages, got %v", got)
	}
}

func TestFirstObservationNeverScrolls(t *testing.T) {
	c := NewScrollController(3)
	c.Arm()
	if got := c.ContentChanged(100, 0); got != ScrollNone {
		t.Errorf("first height sample must not trigger a scroll, got %v", got)
	}
}

func TestShrinkIsNotGrowth(t *testing.T) {
	c := NewScrollController(3)
	prime(c)
	c.ContentChanged(50, 0)

	c.Arm()
	if got := c.ContentChanged(40, 0); got != ScrollNone {
		t.Errorf("content shrink must not trigger a scroll, got %v", got)
	}
}

func TestScrollObservationTogglesAffordance(t *testing.T) {
	c := NewScrollController(3)

	c.Scrolled(10)
	if !c.ShowNewMessagesButton() {
		t.Errorf("away from bottom: affordance should show")
	}

	c.Scrolled(1)
	if c.ShowNewMessagesButton() {
		t.Errorf("near bottom: affordance should hide")
	}
}

func TestScrollToBottomRequestedArms(t *testing.T) {
	c := NewScrollController(3)
	prime(c)

	c.Scrolled(100)
	c.ScrollToBottomRequested(true)

	if c.ShowNewMessagesButton() {
		t.Errorf("explicit jump should hide the affordance")
	}
	if got := c.ContentChanged(20, 0); got != ScrollToBottom {
		t.Errorf("arm=true should arm the user-send branch, got %v", got)
	}
}
