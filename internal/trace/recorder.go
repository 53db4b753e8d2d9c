package trace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ZhaoCake/cakeboard/internal/board"
	"github.com/ZhaoCake/cakeboard/internal/infrastructure/config"
	"github.com/ZhaoCake/cakeboard/internal/infrastructure/database"
	_ "github.com/ZhaoCake/cakeboard/migrations" // registers the trace schema
)

// timeFormat is fixed width so stored timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Logger is the subset of logging.Logger the recorder uses.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Recorder writes snapshots to the trace database.
type Recorder struct {
	*board.Forwarder

	db      *database.DB
	version string
	logger  Logger

	// Owned by the Run goroutine.
	session string
}

// Open opens the database named by cfg, applies pending migrations and
// returns a recorder sampling at cfg.Interval milliseconds.
func Open(ctx context.Context, cfg config.TraceConfig, version string) (*Recorder, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	db, err := database.Open(database.FromTrace(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening trace database: %w", err)
	}
	if _, err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // error path
		return nil, fmt.Errorf("migrating trace database: %w", err)
	}
	return New(db, time.Duration(cfg.Interval)*time.Millisecond, version), nil
}

// New creates a recorder on an already migrated database.
func New(db *database.DB, interval time.Duration, version string) *Recorder {
	return &Recorder{
		Forwarder: board.NewForwarder(interval, 0),
		db:        db,
		version:   version,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger. A nil logger disables logging.
func (r *Recorder) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	r.logger = l
}

// Run records forwarded snapshots until ctx is done. Snapshots buffered at
// cancellation are still written.
func (r *Recorder) Run(ctx context.Context) {
	// Writes outlive ctx so the final Stopped snapshot lands.
	writeCtx := context.WithoutCancel(ctx)
	r.Forwarder.Run(ctx, func(s *board.Snapshot) {
		if err := r.Record(writeCtx, s); err != nil {
			r.logger.Error("trace write failed", "seq", s.Seq, "error", err)
		}
	})
}

// Record stores one snapshot. Snapshots of an unconfigured board are
// ignored. It is called by Run and must not be called concurrently with it.
func (r *Recorder) Record(ctx context.Context, s *board.Snapshot) error {
	if s.State == board.Unconfigured.String() {
		return nil
	}
	if r.session == "" {
		if s.State != board.Running.String() {
			return nil
		}
		if err := r.beginSession(ctx, s); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
		INSERT INTO trace_snapshots (session_id, seq, recorded_at, state, measured_hz, steps, cycles)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.session, int64(s.Seq), s.Time.UTC().Format(timeFormat), s.State,
		s.Pacer.MeasuredHz, s.Pacer.StepsPerInterval, int64(s.Pacer.Cycles),
	)
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}
	snapshotID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("snapshot id: %w", err)
	}

	for _, d := range s.Devices {
		for row, word := range d.Words {
			if _, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO trace_device_words (snapshot_id, device_id, row_index, word) VALUES (?, ?, ?, ?)",
				snapshotID, d.ID, row, int64(word),
			); err != nil {
				return fmt.Errorf("inserting words of %s: %w", d.ID, err)
			}
		}
	}

	if s.State == board.Stopped.String() {
		if _, err := tx.ExecContext(ctx,
			"UPDATE trace_sessions SET ended_at = ? WHERE id = ?",
			s.Time.UTC().Format(timeFormat), r.session,
		); err != nil {
			return fmt.Errorf("ending session: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}

	if s.State == board.Stopped.String() {
		r.logger.Info("trace session ended", "session_id", r.session)
		r.session = ""
	}
	return nil
}

func (r *Recorder) beginSession(ctx context.Context, s *board.Snapshot) error {
	id := uuid.NewString()
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO trace_sessions (id, started_at, target_hz, pacer, version) VALUES (?, ?, ?, ?, ?)",
		id, s.Time.UTC().Format(timeFormat), s.Pacer.TargetHz, s.Pacer.Strategy, r.version,
	); err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	r.session = id
	r.logger.Info("trace session started", "session_id", id, "target_hz", s.Pacer.TargetHz)
	return nil
}

// SessionID returns the open session, or "" between sessions. It is only
// meaningful on the Run goroutine or after Run returns.
func (r *Recorder) SessionID() string {
	return r.session
}

// DB returns the trace database. The command log shares it.
func (r *Recorder) DB() *database.DB {
	return r.db
}

// Close closes the database.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// Session is one recorded board run.
type Session struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	TargetHz  int        `json:"target_hz"`
	Pacer     string     `json:"pacer"`
	Version   string     `json:"version,omitempty"`
	Snapshots int        `json:"snapshots"`
}

// Sessions lists sessions, newest first.
func (r *Recorder) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.started_at, s.ended_at, s.target_hz, s.pacer, s.version,
		       (SELECT COUNT(*) FROM trace_snapshots t WHERE t.session_id = s.id)
		FROM trace_sessions s
		ORDER BY s.started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			s       Session
			started string
			ended   sql.NullString
		)
		if err := rows.Scan(&s.ID, &started, &ended, &s.TargetHz, &s.Pacer, &s.Version, &s.Snapshots); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		s.StartedAt, _ = time.Parse(timeFormat, started) //nolint:errcheck // written by beginSession
		if ended.Valid {
			t, _ := time.Parse(timeFormat, ended.String) //nolint:errcheck // written by Record
			s.EndedAt = &t
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Record is one stored snapshot.
type Record struct {
	Seq        uint64              `json:"seq"`
	RecordedAt time.Time           `json:"recorded_at"`
	State      string              `json:"state"`
	MeasuredHz float64             `json:"measured_hz"`
	Steps      int                 `json:"steps"`
	Cycles     uint64              `json:"cycles"`
	Words      map[string][]uint32 `json:"words"`
}

// Snapshots returns up to limit records of a session in sequence order.
// A non-positive limit returns all of them.
func (r *Recorder) Snapshots(ctx context.Context, sessionID string, limit int) ([]Record, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM trace_sessions WHERE id = ?", sessionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, seq, recorded_at, state, measured_hz, steps, cycles
		FROM trace_snapshots WHERE session_id = ?
		ORDER BY seq LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}

	var (
		records []Record
		ids     []int64
	)
	for rows.Next() {
		var (
			rec        Record
			id         int64
			seq, cyc   int64
			recordedAt string
		)
		if err := rows.Scan(&id, &seq, &recordedAt, &rec.State, &rec.MeasuredHz, &rec.Steps, &cyc); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		rec.Seq = uint64(seq)
		rec.Cycles = uint64(cyc)
		rec.RecordedAt, _ = time.Parse(timeFormat, recordedAt) //nolint:errcheck // written by Record
		rec.Words = make(map[string][]uint32)
		records = append(records, rec)
		ids = append(ids, id)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	// The pool holds one connection, so words are read after the snapshot
	// rows are closed.
	for i, id := range ids {
		if err := r.loadWords(ctx, id, records[i].Words); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (r *Recorder) loadWords(ctx context.Context, snapshotID int64, into map[string][]uint32) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT device_id, word FROM trace_device_words WHERE snapshot_id = ? ORDER BY device_id, row_index",
		snapshotID)
	if err != nil {
		return fmt.Errorf("querying words: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			deviceID string
			word     int64
		)
		if err := rows.Scan(&deviceID, &word); err != nil {
			return fmt.Errorf("scanning word: %w", err)
		}
		into[deviceID] = append(into[deviceID], uint32(word))
	}
	return rows.Err()
}
