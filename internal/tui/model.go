// Package tui is the terminal client: the resume carousel with keyboard and
// mouse-drag navigation, live updates from the poller and the chat widget.
package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zachkp/webresume/internal/carousel"
	"github.com/Zachkp/webresume/internal/chat"
	"github.com/Zachkp/webresume/internal/gesture"
	"github.com/Zachkp/webresume/internal/resume"
	"github.com/Zachkp/webresume/internal/section"
)

// Terminal cells are converted to approximate pixels so drags are measured
// against the same swipe threshold as touch gestures.
const (
	cellWidth  = 8
	cellHeight = 16
)

const (
	statusFailed    = "Error loading data. Please try again later."
	statusRefreshed = "Data refreshed"
)

// Messages delivered to the program from the poller and chat.
type (
	dataMsg      resume.Data
	failedMsg    struct{ err error }
	refreshedMsg struct{}
	replyMsg     struct{ err error }
)

// Model is the bubbletea model for the terminal client.
type Model struct {
	ctx      context.Context
	nav      *carousel.Controller
	tracker  *gesture.Tracker
	chat     *chat.Conversation
	refresh  func()
	data     resume.Data
	status   string
	chatOpen bool
	input    string
	sending  bool
	width    int
	styles   styles
	markdown *markdown
}

// New creates a model showing data. refresh requests a manual reload and
// may be nil.
func New(ctx context.Context, data resume.Data, conv *chat.Conversation, refresh func()) Model {
	if refresh == nil {
		refresh = func() {}
	}
	return Model{
		ctx:      ctx,
		nav:      carousel.New(section.Len()),
		tracker:  &gesture.Tracker{},
		chat:     conv,
		refresh:  refresh,
		data:     data,
		width:    80,
		styles:   newStyles(),
		markdown: newMarkdown(),
	}
}

// Index returns the current section index.
func (m Model) Index() int {
	return m.nav.Index()
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case dataMsg:
		m.data = resume.Data(msg)
		if m.status == statusFailed {
			m.status = ""
		}

	case failedMsg:
		m.status = statusFailed

	case refreshedMsg:
		m.status = statusRefreshed

	case replyMsg:
		m.sending = false

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.KeyMsg:
		if m.chatOpen {
			return m.updateChat(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "left", "h":
		m.nav.Previous()
	case "right", "l":
		m.nav.Next()
	case "r":
		m.status = ""
		m.refresh()
	case "c":
		if m.chat != nil {
			m.chatOpen = true
		}
	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			// 1 is the first section, 0 the tenth.
			idx := int(key[0]-'0') - 1
			if idx < 0 {
				idx = 9
			}
			m.nav.GoTo(idx)
		}
	}
	return m, nil
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.chatOpen = false
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input)
		if text == "" || m.sending {
			return m, nil
		}
		m.input = ""
		m.sending = true
		return m, m.send(text)
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m Model) send(text string) tea.Cmd {
	conv := m.chat
	ctx := m.ctx
	return func() tea.Msg {
		return replyMsg{err: conv.Send(ctx, text)}
	}
}

// handleMouse feeds left-button drags to the gesture tracker.
func (m Model) handleMouse(msg tea.MouseMsg) {
	sample := gesture.Sample{X: float64(msg.X * cellWidth), Y: float64(msg.Y * cellHeight)}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.tracker.Start(sample)
		}
	case tea.MouseActionMotion:
		m.tracker.Move(sample)
	case tea.MouseActionRelease:
		gesture.Apply(m.tracker.End(), m.nav)
	}
}
