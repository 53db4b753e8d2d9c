package telemetry

import (
	"context"
	"time"

	"github.com/ZhaoCake/cakeboard/internal/board"
	"github.com/ZhaoCake/cakeboard/internal/pacer"
)

// Writer receives sampled measurements.
type Writer interface {
	WritePacerStats(stats pacer.Stats, at time.Time)
	WriteDeviceWords(deviceID, kind string, words []uint32, at time.Time)
}

// Logger is the subset of logging.Logger the sampler uses.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// Sampler turns snapshots into Writer calls.
type Sampler struct {
	*board.Forwarder

	writer Writer
	logger Logger
}

// NewSampler creates a sampler that writes at most once per interval.
func NewSampler(w Writer, interval time.Duration) *Sampler {
	return &Sampler{
		Forwarder: board.NewForwarder(interval, 0),
		writer:    w,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger. A nil logger disables logging.
func (s *Sampler) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	s.logger = l
}

// Run writes forwarded snapshots until ctx is done. Call it once, on its
// own goroutine, before the board starts publishing.
func (s *Sampler) Run(ctx context.Context) {
	s.Forwarder.Run(ctx, s.write)
	s.logger.Debug("telemetry sampler stopped", "dropped", s.Dropped())
}

func (s *Sampler) write(snap *board.Snapshot) {
	s.writer.WritePacerStats(snap.Pacer, snap.Time)
	for _, d := range snap.Devices {
		s.writer.WriteDeviceWords(d.ID, string(d.Kind), d.Words, snap.Time)
	}
}
