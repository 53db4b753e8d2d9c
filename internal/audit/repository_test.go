package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZhaoCake/cakeboard/internal/infrastructure/database"
	_ "github.com/ZhaoCake/cakeboard/migrations"
)

func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "audit.db"), BusyTimeout: 5})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func TestCreate_FillsDefaults(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	e := &Entry{Command: "toggle", DeviceID: "sw", Source: SourceAPI, Details: map[string]any{"row": 0, "col": 3}}
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Errorf("Create() left ID=%q CreatedAt=%v", e.ID, e.CreatedAt)
	}

	res, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Total != 1 || len(res.Entries) != 1 {
		t.Fatalf("List() total=%d len=%d, want 1/1", res.Total, len(res.Entries))
	}
	got := res.Entries[0]
	if got.ID != e.ID || got.Command != "toggle" || got.Subject != "" {
		t.Errorf("entry = %+v", got)
	}
	if got.Details["col"] != float64(3) {
		t.Errorf("details col = %v, want 3", got.Details["col"])
	}
	if !got.CreatedAt.Equal(e.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, e.CreatedAt)
	}
}

func TestList_Filters(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	seed := []Entry{
		{Command: "set", DeviceID: "sw", Source: SourceAPI, Subject: "bench"},
		{Command: "toggle", DeviceID: "sw", Source: SourceMQTT},
		{Command: "reset", DeviceID: "led", Source: SourceAPI},
		{Command: "word", DeviceID: "sw", Source: SourceMQTT},
	}
	for i := range seed {
		seed[i].CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := repo.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	tests := []struct {
		name         string
		filter       Filter
		wantTotal    int
		wantCommands []string
	}{
		{"all newest first", Filter{}, 4, []string{"word", "reset", "toggle", "set"}},
		{"by device", Filter{DeviceID: "sw"}, 3, []string{"word", "toggle", "set"}},
		{"by source", Filter{Source: SourceAPI}, 2, []string{"reset", "set"}},
		{"device and source", Filter{DeviceID: "sw", Source: SourceMQTT}, 2, []string{"word", "toggle"}},
		{"paged", Filter{Limit: 2, Offset: 1}, 4, []string{"reset", "toggle"}},
		{"no match", Filter{DeviceID: "nope"}, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if res.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", res.Total, tt.wantTotal)
			}
			if len(res.Entries) != len(tt.wantCommands) {
				t.Fatalf("len = %d, want %d", len(res.Entries), len(tt.wantCommands))
			}
			for i, want := range tt.wantCommands {
				if res.Entries[i].Command != want {
					t.Errorf("Entries[%d].Command = %q, want %q", i, res.Entries[i].Command, want)
				}
			}
		})
	}
}

func TestList_ClampsLimit(t *testing.T) {
	repo := testRepo(t)

	res, err := repo.List(context.Background(), Filter{Limit: MaxLimit + 10, Offset: -3})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Limit != MaxLimit || res.Offset != 0 {
		t.Errorf("Limit/Offset = %d/%d, want %d/0", res.Limit, res.Offset, MaxLimit)
	}
	if res.Entries == nil {
		t.Error("Entries is nil, want empty slice")
	}

	res, err = repo.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Limit != DefaultLimit {
		t.Errorf("default Limit = %d, want %d", res.Limit, DefaultLimit)
	}
}
