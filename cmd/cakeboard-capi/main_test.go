package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZhaoCake/cakeboard/internal/board"
)

func TestStart_BuiltInBoard(t *testing.T) {
	b, err := start(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("start() error = %v", err)
	}
	t.Cleanup(func() {
		board.Uninstall()
		b.Quit()
	})

	if board.Installed() != b {
		t.Fatal("started board is not installed")
	}
	if board.LEDRows() != 1 || board.LEDCols() != 16 {
		t.Errorf("LED dims = %dx%d, want 1x16", board.LEDRows(), board.LEDCols())
	}
	if !board.UpdateSwitchState(0, 5, true) {
		t.Fatal("UpdateSwitchState(0, 5) = false")
	}
	b.Refresh()
	if !board.SwitchState(0, 5) {
		t.Error("SwitchState(0, 5) = false after refresh")
	}
}

func TestStart_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
board:
  target_hz: 1000
logging:
  level: error
devices:
  - id: bar
    kind: led
    rows: 2
    cols: 4
    signals:
      - register: led
        width: 8
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	b, err := start(path)
	if err != nil {
		t.Fatalf("start() error = %v", err)
	}
	t.Cleanup(func() {
		board.Uninstall()
		b.Quit()
	})

	if board.LEDRows() != 2 || board.LEDCols() != 4 {
		t.Errorf("LED dims = %dx%d, want 2x4", board.LEDRows(), board.LEDCols())
	}
	if board.SwitchRows() != 0 {
		t.Errorf("SwitchRows() = %d, want 0 with no switch", board.SwitchRows())
	}
}

func TestStart_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("board:\n  target_hz: -1\n"), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := start(path); err == nil {
		t.Error("start() with invalid config: expected error")
	}
}
