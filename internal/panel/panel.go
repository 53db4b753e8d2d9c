package panel

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/ZhaoCake/cakeboard/internal/board"
	"github.com/ZhaoCake/cakeboard/internal/infrastructure/config"
)

// Logger is the subset of logging.Logger the panel uses.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Panel redraws the terminal from forwarded snapshots.
type Panel struct {
	*board.Forwarder

	out    io.Writer
	width  func() int
	logger Logger
	frame  bytes.Buffer
}

// New creates a panel drawing to out at most once per cfg.Interval
// milliseconds.
func New(cfg config.PanelConfig, out io.Writer) *Panel {
	return &Panel{
		Forwarder: board.NewForwarder(time.Duration(cfg.Interval)*time.Millisecond, board.DefaultForwardBuffer),
		out:       out,
		width:     func() int { return 0 },
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger.
func (p *Panel) SetLogger(l Logger) {
	if l != nil {
		p.logger = l
	}
}

// SetWidth sets the source of the terminal width in cells.
func (p *Panel) SetWidth(fn func() int) {
	if fn != nil {
		p.width = fn
	}
}

// Run draws every forwarded snapshot until ctx is cancelled.
func (p *Panel) Run(ctx context.Context) {
	//nolint:errcheck // best-effort screen clear
	io.WriteString(p.out, ansiClear)
	p.Forwarder.Run(ctx, p.draw)
}

func (p *Panel) draw(s *board.Snapshot) {
	p.frame.Reset()
	p.frame.WriteString(ansiHome)
	if err := Render(&p.frame, s, p.width()); err != nil {
		p.logger.Warn("panel render failed", "error", err)
		return
	}
	if _, err := p.out.Write(p.frame.Bytes()); err != nil {
		p.logger.Debug("panel write failed", "error", err)
	}
}
