// Package composer implements the message input box of a ticket
// conversation. The draft clears optimistically when a send starts and
// is restored if the send fails, so the box feels instant without
// losing text on errors.
package composer

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Composer error constants
var (
	ErrDisabled     = errors.New("composer: sending is disabled")
	ErrSendInFlight = errors.New("composer: a send is already in progress")
)

// Sender delivers a finished draft. The composer never appends the
// message to any local view on success; the delivered message comes
// back through the realtime channel like everyone else's.
type Sender func(ctx context.Context, body, mediaURL string) error

// Composer holds one draft for one ticket conversation.
type Composer struct {
	mu       sync.Mutex
	text     string
	mediaURL string
	enabled  bool
	inFlight bool
	send     Sender
}

// New creates an enabled composer delivering through send.
func New(send Sender) *Composer {
	return &Composer{
		enabled: true,
		send:    send,
	}
}

// SetText replaces the draft text.
func (c *Composer) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
}

// Text returns the current draft text.
func (c *Composer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// AttachMedia sets the draft's media attachment.
func (c *Composer) AttachMedia(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mediaURL = url
}

// ClearMedia removes the draft's media attachment.
func (c *Composer) ClearMedia() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mediaURL = ""
}

// MediaURL returns the current draft attachment.
func (c *Composer) MediaURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mediaURL
}

// SetEnabled toggles whether sends are allowed. Wired to the ticket's
// permission state; a permission event flips this live.
func (c *Composer) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

// Enabled reports whether sends are currently allowed.
func (c *Composer) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Send delivers the current draft.
//
// An empty draft (whitespace-only text and no media) is a silent
// no-op. The draft is cleared before delivery starts; if delivery
// fails the cleared content is restored, unless the user already
// started a new draft, which is left alone. Only one send may be in
// flight at a time.
func (c *Composer) Send(ctx context.Context) error {
	c.mu.Lock()

	if !c.enabled {
		c.mu.Unlock()
		return ErrDisabled
	}
	if c.inFlight {
		c.mu.Unlock()
		return ErrSendInFlight
	}

	// The wire payload is trimmed; the raw draft is what a failed
	// send must bring back, byte for byte.
	draftText := c.text
	mediaURL := c.mediaURL
	body := strings.TrimSpace(draftText)
	if body == "" && mediaURL == "" {
		c.mu.Unlock()
		return nil
	}

	// Optimistic clear: the box empties the moment send is tapped.
	c.text = ""
	c.mediaURL = ""
	c.inFlight = true
	c.mu.Unlock()

	err := c.send(ctx, body, mediaURL)

	c.mu.Lock()
	c.inFlight = false
	if err != nil {
		// Restore the failed draft so nothing is lost, but never
		// clobber text the user typed while the send was running.
		if c.text == "" {
			c.text = draftText
		}
		if c.mediaURL == "" {
			c.mediaURL = mediaURL
		}
	}
	c.mu.Unlock()

	return err
}

// InFlight reports whether a send is currently running.
func (c *Composer) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}
