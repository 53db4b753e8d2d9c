package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ZhaoCake/cakeboard/internal/audit"
	"github.com/ZhaoCake/cakeboard/internal/board"
	"github.com/ZhaoCake/cakeboard/internal/signal"
	"github.com/ZhaoCake/cakeboard/internal/trace"
)

// cellRequest is the body of PUT /devices/{id}/cells/{row}/{col}.
type cellRequest struct {
	On *bool `json:"on"`
}

// rowRequest is the body of PUT /devices/{id}/rows/{row}.
type rowRequest struct {
	Value *uint32 `json:"value"`
}

// commandAccepted is the body of every 202 response.
type commandAccepted struct {
	DeviceID string `json:"device_id"`
	Command  string `json:"command"`
	Seq      uint64 `json:"seq"`
}

func (s *Server) latest(w http.ResponseWriter) (*board.Snapshot, bool) {
	snap := s.board.Latest()
	if snap == nil {
		writeUnavailable(w, "board has not published a snapshot yet")
		return nil, false
	}
	return snap, true
}

func (s *Server) handleGetBoard(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.latest(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.latest(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": snap.Devices,
		"count":   len(snap.Devices),
	})
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	if d, ok := s.device(w, r); ok {
		writeJSON(w, http.StatusOK, d)
	}
}

func (s *Server) device(w http.ResponseWriter, r *http.Request) (board.DeviceState, bool) {
	snap, ok := s.latest(w)
	if !ok {
		return board.DeviceState{}, false
	}
	id := chi.URLParam(r, "id")
	d, ok := snap.Device(id)
	if !ok {
		writeNotFound(w, "device not found: "+id)
		return board.DeviceState{}, false
	}
	return d, true
}

// index parses a row or column path parameter against limit.
func index(r *http.Request, name string, limit int) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	if v < 0 || v >= limit {
		return 0, errors.New(name + " " + strconv.Itoa(v) + " out of range [0, " + strconv.Itoa(limit) + ")")
	}
	return v, nil
}

func (s *Server) cell(w http.ResponseWriter, r *http.Request) (board.DeviceState, int, int, bool) {
	d, ok := s.device(w, r)
	if !ok {
		return d, 0, 0, false
	}
	row, err := index(r, "row", d.Rows)
	if err != nil {
		writeBadRequest(w, err.Error())
		return d, 0, 0, false
	}
	col, err := index(r, "col", d.Cols)
	if err != nil {
		writeBadRequest(w, err.Error())
		return d, 0, 0, false
	}
	return d, row, col, true
}

func (s *Server) accept(w http.ResponseWriter, r *http.Request, deviceID, command string, payload any, details map[string]any) {
	s.board.SendSignal(signal.New(deviceID, payload))
	s.record(r, deviceID, command, details)

	var seq uint64
	if snap := s.board.Latest(); snap != nil {
		seq = snap.Seq
	}
	s.logger.Debug("command queued",
		"device_id", deviceID,
		"command", command,
		"subject", subject(r),
		"request_id", r.Context().Value(ctxKeyRequestID),
	)
	writeJSON(w, http.StatusAccepted, commandAccepted{DeviceID: deviceID, Command: command, Seq: seq})
}

// record adds the command to the audit log. A failed write is logged and
// does not fail the request; the command is already queued.
func (s *Server) record(r *http.Request, deviceID, command string, details map[string]any) {
	if s.audit == nil {
		return
	}
	entry := &audit.Entry{
		Command:  command,
		DeviceID: deviceID,
		Subject:  subject(r),
		Source:   audit.SourceAPI,
		Details:  details,
	}
	if err := s.audit.Create(r.Context(), entry); err != nil {
		s.logger.Warn("recording command failed", "device_id", deviceID, "command", command, "error", err)
	}
}

func (s *Server) handleSetCell(w http.ResponseWriter, r *http.Request) {
	d, row, col, ok := s.cell(w, r)
	if !ok {
		return
	}
	var req cellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.On == nil {
		writeBadRequest(w, "on is required")
		return
	}
	s.accept(w, r, d.ID, "set", signal.CellPayload{Row: row, Col: col, On: *req.On},
		map[string]any{"row": row, "col": col, "on": *req.On})
}

func (s *Server) handleToggleCell(w http.ResponseWriter, r *http.Request) {
	d, row, col, ok := s.cell(w, r)
	if !ok {
		return
	}
	s.accept(w, r, d.ID, "toggle", signal.TogglePayload{Row: row, Col: col},
		map[string]any{"row": row, "col": col})
}

func (s *Server) handleSetRow(w http.ResponseWriter, r *http.Request) {
	d, ok := s.device(w, r)
	if !ok {
		return
	}
	row, err := index(r, "row", d.Rows)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	var req rowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if req.Value == nil {
		writeBadRequest(w, "value is required")
		return
	}
	s.accept(w, r, d.ID, "word", signal.WordPayload{Row: row, Value: *req.Value},
		map[string]any{"row": row, "value": *req.Value})
}

func (s *Server) handleResetDevice(w http.ResponseWriter, r *http.Request) {
	d, ok := s.device(w, r)
	if !ok {
		return
	}
	s.accept(w, r, d.ID, "reset", signal.ResetPayload{}, nil)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if s.trace == nil {
		writeNotFound(w, "tracing is disabled")
		return
	}
	sessions, err := s.trace.Sessions(r.Context())
	if err != nil {
		s.logger.Error("listing trace sessions", "error", err)
		writeInternalError(w, "failed to list trace sessions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	if s.trace == nil {
		writeNotFound(w, "tracing is disabled")
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	id := chi.URLParam(r, "id")
	records, err := s.trace.Snapshots(r.Context(), id, limit)
	if errors.Is(err, trace.ErrSessionNotFound) {
		writeNotFound(w, "trace session not found: "+id)
		return
	}
	if err != nil {
		s.logger.Error("reading trace session", "session_id", id, "error", err)
		writeInternalError(w, "failed to read trace session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": id,
		"snapshots":  records,
		"count":      len(records),
	})
}

func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeNotFound(w, "command log is disabled")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		DeviceID: q.Get("device_id"),
		Source:   q.Get("source"),
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, name+" must be a non-negative integer")
			return
		}
		*dst = n
	}

	res, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing command log", "error", err)
		writeInternalError(w, "failed to list command log")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
