package panel

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ZhaoCake/cakeboard/internal/board"
	"github.com/ZhaoCake/cakeboard/internal/device"
	"github.com/ZhaoCake/cakeboard/internal/infrastructure/config"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPanel_DrawsBoard(t *testing.T) {
	var out syncBuffer
	p := New(config.PanelConfig{Enabled: true}, &out)
	p.SetWidth(func() int { return 80 })

	b := board.New(board.WithObserver(p))
	b.AddDevice(device.NewSwitch("sw", device.Config{Rows: 1, Cols: 4}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	NewKeyboard(b.Sender(), b.Latest).HandleKey('2')
	b.Refresh()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	frame := out.String()
	if !strings.HasPrefix(frame, ansiClear) {
		t.Errorf("output does not start with a screen clear: %q", frame)
	}
	if !strings.Contains(frame, "   0 ▯▯▮▯  0x2") {
		t.Errorf("toggled switch not drawn\n%s", frame)
	}
}

func TestPanel_DropsWhenBehind(t *testing.T) {
	var out syncBuffer
	p := New(config.PanelConfig{Enabled: true}, &out)

	for i := 0; i < board.DefaultForwardBuffer+3; i++ {
		p.Observe(&board.Snapshot{Seq: uint64(i + 1), State: "running", Time: time.Unix(int64(i), 0)})
	}
	if got := p.Dropped(); got != 3 {
		t.Errorf("Dropped() = %d, want 3", got)
	}
}
