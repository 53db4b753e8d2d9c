package panel

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ZhaoCake/cakeboard/internal/board"
	"github.com/ZhaoCake/cakeboard/internal/device"
)

const (
	ansiHome      = "\x1b[H"
	ansiClear     = "\x1b[2J"
	ansiClearLine = "\x1b[K"
	ansiDim       = "\x1b[2m"
	ansiReset     = "\x1b[0m"
)

// Glyphs used for cells.
const (
	ledOn     = "●"
	ledOff    = "○"
	switchOn  = "▮"
	switchOff = "▯"
)

// Render writes one frame for s. width limits the cells drawn per row;
// zero means no limit. The frame does not start with a screen clear so it
// can be tested as plain text.
func Render(w io.Writer, s *board.Snapshot, width int) error {
	bw := bufio.NewWriter(w)

	if s == nil {
		fmt.Fprintln(bw, "waiting for board...")
		return bw.Flush()
	}

	fmt.Fprintf(bw, "cakeboard  %s  seq %d\n", s.State, s.Seq)
	fmt.Fprintf(bw, "%s%s %d Hz target, %.0f Hz measured, %d steps/refresh, %d cycles%s\n",
		ansiDim, s.Pacer.Strategy, s.Pacer.TargetHz, s.Pacer.MeasuredHz,
		s.Pacer.StepsPerInterval, s.Pacer.Cycles, ansiReset)

	for _, d := range s.Devices {
		fmt.Fprintln(bw)
		renderDevice(bw, d, s, width)
	}

	if s.CurrentSwitch != "" {
		fmt.Fprintf(bw, "\n%skeys toggle %s; ctrl-c quits%s\n", ansiDim, s.CurrentSwitch, ansiReset)
	}
	return bw.Flush()
}

func renderDevice(w io.Writer, d board.DeviceState, s *board.Snapshot, width int) {
	marker := ""
	if d.ID == s.CurrentLED || d.ID == s.CurrentSwitch {
		marker = " *"
	}
	fmt.Fprintf(w, "%s  (%s, %dx%d)%s\n", d.ID, d.Kind, d.Rows, d.Cols, marker)

	on, off := ledOn, ledOff
	if d.Kind == device.KindSwitch {
		on, off = switchOn, switchOff
	}

	cols := d.Cols
	if width > 0 && cols > width {
		cols = width
	}
	hexDigits := (d.Cols + 3) / 4

	var sb strings.Builder
	for r := 0; r < d.Rows; r++ {
		sb.Reset()
		// Column 0 is bit 0, so draw from the high column down to read
		// like the hex word.
		for c := cols - 1; c >= 0; c-- {
			if d.State(r, c) {
				sb.WriteString(on)
			} else {
				sb.WriteString(off)
			}
		}
		var word uint32
		if r < len(d.Words) {
			word = d.Words[r]
		}
		line := fmt.Sprintf("  %2d %s  0x%0*x", r, sb.String(), hexDigits, word)
		if r < len(d.Labels) && d.Labels[r] != "" {
			line += "  " + d.Labels[r]
		}
		fmt.Fprintln(w, line+ansiClearLine)
	}
}
