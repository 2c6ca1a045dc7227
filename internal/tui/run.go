package tui

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/Zachkp/webresume/internal/chat"
	"github.com/Zachkp/webresume/internal/fetcher"
	"github.com/Zachkp/webresume/internal/resume"
)

// Options configures Run.
type Options struct {
	// BaseURL is the site root, e.g. http://localhost:8080.
	BaseURL  string
	Interval time.Duration
	Persona  string
	Log      *slog.Logger
}

// programNotifier forwards refresh outcomes into the running program. It
// drops messages until the program is attached.
type programNotifier struct {
	mu sync.Mutex
	p  *tea.Program
}

func (n *programNotifier) attach(p *tea.Program) {
	n.mu.Lock()
	n.p = p
	n.mu.Unlock()
}

func (n *programNotifier) send(msg tea.Msg) {
	n.mu.Lock()
	p := n.p
	n.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (n *programNotifier) RefreshFailed(err error) { n.send(failedMsg{err: err}) }

func (n *programNotifier) Refreshed() { n.send(refreshedMsg{}) }

// Run starts the terminal client against a running site and blocks until the
// user quits.
func Run(ctx context.Context, opts Options) error {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	base := strings.TrimRight(opts.BaseURL, "/")

	notifier := &programNotifier{}
	f := fetcher.New(fetcher.NewHTTPSource(base+"/api"), notifier, opts.Log)
	poller := fetcher.NewPoller(f, opts.Interval)

	conv := chat.NewConversation(chat.NewClient(base), opts.Persona)
	m := New(ctx, resume.Loading(), conv, poller.Trigger)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	notifier.attach(p)
	f.OnUpdate(func(d resume.Data) { p.Send(dataMsg(d)) })

	poller.Start(ctx)
	defer poller.Stop()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
