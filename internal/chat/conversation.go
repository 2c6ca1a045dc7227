package chat

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// Greeting opens every conversation.
	Greeting = "Hey there! What can I help you with today?"
	// Apology is shown when a reply could not be obtained.
	Apology = "Sorry, something went wrong while processing your message. Please try again later."

	windowSize = 10
)

// Sender identifies who wrote a transcript entry.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Entry is one line of the visible transcript.
type Entry struct {
	ID     string
	Text   string
	Sender Sender
	Time   time.Time
}

// Conversation is the visitor's side of a chat: the visible transcript and
// the role-tagged history sent with every message.
type Conversation struct {
	replier Replier
	now     func() time.Time

	mu         sync.Mutex
	seq        int
	transcript []Entry
	history    []Message
}

// NewConversation starts a conversation seeded with the persona and greeting.
func NewConversation(replier Replier, persona string) *Conversation {
	c := &Conversation{replier: replier, now: time.Now}
	c.transcript = []Entry{c.entry(Greeting, SenderAssistant)}
	c.history = []Message{
		{Role: RoleSystem, Content: persona},
		{Role: RoleAssistant, Content: Greeting},
	}
	return c
}

// Transcript returns a copy of the visible transcript.
func (c *Conversation) Transcript() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.transcript...)
}

// History returns a copy of the role-tagged history.
func (c *Conversation) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.history...)
}

// Send posts text and records the reply. Blank input is ignored. On failure
// the apology is appended to the transcript while the history keeps the user
// turn; the error is returned for logging.
func (c *Conversation) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	c.transcript = append(c.transcript, c.entry(text, SenderUser))
	c.history = append(c.history, Message{Role: RoleUser, Content: text})
	window := c.window()
	c.mu.Unlock()

	reply, err := c.replier.Reply(ctx, text, window)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.transcript = append(c.transcript, c.entry(Apology, SenderAssistant))
		return err
	}
	c.history = append(c.history, Message{Role: RoleAssistant, Content: reply})
	c.transcript = append(c.transcript, c.entry(reply, SenderAssistant))
	return nil
}

// window is the first history entry plus the last ten turns.
func (c *Conversation) window() []Message {
	start := len(c.history) - windowSize
	if start < 1 {
		start = 1
	}
	w := make([]Message, 0, 1+len(c.history)-start)
	w = append(w, c.history[0])
	return append(w, c.history[start:]...)
}

func (c *Conversation) entry(text string, sender Sender) Entry {
	c.seq++
	return Entry{ID: strconv.Itoa(c.seq), Text: text, Sender: sender, Time: c.now()}
}
