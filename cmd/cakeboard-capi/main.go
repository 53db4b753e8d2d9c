// Command cakeboard-capi builds CakeBoard as a C shared library for host
// display tooling:
//
//	go build -buildmode=c-shared -o libcakeboard.so ./cmd/cakeboard-capi
//
// The host calls cakeboardInit once, then cakeboardStep from a single
// thread to advance the board. The get* accessors read the latest
// snapshot and may be called from any thread; updateSwitchState queues a
// change that lands on the next refresh pass. Every accessor returns 0 or
// false before cakeboardInit and after cakeboardQuit.
package main

/*
#include <stdbool.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ZhaoCake/cakeboard/internal/board"
	"github.com/ZhaoCake/cakeboard/internal/design"
	"github.com/ZhaoCake/cakeboard/internal/device"
	"github.com/ZhaoCake/cakeboard/internal/infrastructure/config"
	"github.com/ZhaoCake/cakeboard/internal/infrastructure/logging"
)

var version = "dev"

var (
	libMu    sync.Mutex
	libBoard *board.Board
)

// Return codes of cakeboardInit.
const (
	initOK             = 0
	initAlreadyRunning = 1
	initFailed         = -1
)

// start builds the board described by the config at path, or the built-in
// board when path is empty or missing, and installs it.
func start(path string) (*board.Board, error) {
	cfg, err := config.Load(path)
	if path == "" || errors.Is(err, os.ErrNotExist) {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, err
	}

	log := logging.New(cfg.Logging, version)
	counter := design.NewCounter(cfg.Board.CounterShift)
	b := board.New(
		board.WithDesign(counter),
		board.WithLogger(log),
		board.WithRefreshRate(cfg.Board.RefreshRate),
		board.WithStrategy(cfg.Board.Pacer),
	)
	for _, spec := range cfg.Devices {
		d, err := device.Build(spec, counter)
		if err != nil {
			b.Quit()
			return nil, fmt.Errorf("building device %q: %w", spec.ID, err)
		}
		b.AddDevice(d)
	}

	b.ResetDesign(cfg.Board.ResetCycles)
	if err := b.Init(cfg.Board.TargetHz); err != nil {
		b.Quit()
		return nil, err
	}
	board.Install(b)
	return b, nil
}

//export cakeboardInit
func cakeboardInit(configPath *C.char) C.int {
	libMu.Lock()
	defer libMu.Unlock()

	if libBoard != nil {
		return initAlreadyRunning
	}
	path := ""
	if configPath != nil {
		path = C.GoString(configPath)
	}
	b, err := start(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cakeboard: %v\n", err)
		return initFailed
	}
	libBoard = b
	return initOK
}

//export cakeboardStep
func cakeboardStep(cycles C.int) {
	libMu.Lock()
	b := libBoard
	libMu.Unlock()
	if b == nil {
		return
	}
	for i := 0; i < int(cycles); i++ {
		b.Update()
	}
}

//export cakeboardQuit
func cakeboardQuit() {
	libMu.Lock()
	defer libMu.Unlock()

	if libBoard == nil {
		return
	}
	board.Uninstall()
	libBoard.Quit()
	libBoard = nil
}

//export getLedRows
func getLedRows() C.int { return C.int(board.LEDRows()) }

//export getLedCols
func getLedCols() C.int { return C.int(board.LEDCols()) }

//export getLedState
func getLedState(row, col C.int) C.bool { return C.bool(board.LEDState(int(row), int(col))) }

//export getSwitchRows
func getSwitchRows() C.int { return C.int(board.SwitchRows()) }

//export getSwitchCols
func getSwitchCols() C.int { return C.int(board.SwitchCols()) }

//export getSwitchState
func getSwitchState(row, col C.int) C.bool {
	return C.bool(board.SwitchState(int(row), int(col)))
}

//export updateSwitchState
func updateSwitchState(row, col C.int, on C.bool) C.bool {
	return C.bool(board.UpdateSwitchState(int(row), int(col), bool(on)))
}

func main() {}
