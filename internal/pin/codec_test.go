package pin

import (
	"errors"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		reg   uint32
		width int
		low   int
		high  int
		want  uint32
	}{
		{name: "low byte unsliced", reg: 0xABCD, width: 8, low: 0, high: Unsliced, want: 0xCD},
		{name: "full register", reg: 0xDEADBEEF, width: 32, low: 0, high: Unsliced, want: 0xDEADBEEF},
		{name: "nibble slice", reg: 0xABCD, width: 4, low: 4, high: 7, want: 0xC},
		{name: "single bit", reg: 0x80000000, width: 1, low: 31, high: 31, want: 1},
		{name: "slice narrower than width", reg: 0xF0, width: 8, low: 4, high: 5, want: 0x3},
		{name: "top slice", reg: 0xFF000000, width: 8, low: 24, high: 31, want: 0xFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.reg, tt.width, tt.low, tt.high)
			if got != tt.want {
				t.Errorf("Extract(%#x, %d, %d, %d) = %#x, want %#x", tt.reg, tt.width, tt.low, tt.high, got, tt.want)
			}
		})
	}
}

func TestInsert(t *testing.T) {
	tests := []struct {
		name  string
		reg   uint32
		field uint32
		width int
		low   int
		high  int
		want  uint32
	}{
		{name: "unsliced keeps upper bits", reg: 0xFF00, field: 0x5A, width: 8, low: 0, high: Unsliced, want: 0xFF5A},
		{name: "slice in the middle", reg: 0xFFFF, field: 0x0, width: 4, low: 4, high: 7, want: 0xFF0F},
		{name: "oversized field truncated", reg: 0, field: 0xFF, width: 4, low: 8, high: 11, want: 0xF00},
		{name: "full register", reg: 0x1234, field: 0xCAFEBABE, width: 32, low: 0, high: Unsliced, want: 0xCAFEBABE},
		{name: "top bit", reg: 0, field: 1, width: 1, low: 31, high: 31, want: 0x80000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Insert(tt.reg, tt.field, tt.width, tt.low, tt.high)
			if got != tt.want {
				t.Errorf("Insert() = %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestInsertExtract_RoundTrip(t *testing.T) {
	regs := []uint32{0, 0xFFFFFFFF, 0xA5A5A5A5, 0x12345678}

	for width := MinWidth; width <= MaxWidth; width++ {
		for low := 0; low+width <= MaxWidth; low += 3 {
			for sliceLen := 1; sliceLen <= width; sliceLen += 5 {
				high := low + sliceLen - 1
				if high >= MaxWidth {
					continue
				}
				if err := Validate(width, low, high); err != nil {
					t.Fatalf("Validate(%d, %d, %d) = %v", width, low, high, err)
				}
				for _, r := range regs {
					f := uint32(0x9E3779B9) & mask(sliceLen)
					got := Extract(Insert(r, f, width, low, high), width, low, high)
					if got != f {
						t.Fatalf("round trip width=%d [%d:%d] reg=%#x: got %#x, want %#x", width, high, low, r, got, f)
					}
				}
			}
		}
	}
}

func TestInsert_PreservesOutsideBits(t *testing.T) {
	regs := []uint32{0, 0xFFFFFFFF, 0xA5A5A5A5}

	for low := 0; low < MaxWidth; low++ {
		for high := low; high < MaxWidth; high++ {
			width := high - low + 1
			for _, r := range regs {
				after := Insert(r, ^r, width, low, high)
				for bit := 0; bit < MaxWidth; bit++ {
					if bit >= low && bit <= high {
						continue
					}
					if (after>>uint(bit))&1 != (r>>uint(bit))&1 {
						t.Fatalf("Insert [%d:%d] reg=%#x changed bit %d", high, low, r, bit)
					}
				}
			}
		}
	}

	for width := MinWidth; width <= MaxWidth; width++ {
		after := Insert(0xFFFFFFFF, 0, width, 0, Unsliced)
		if width < MaxWidth && after>>uint(width) != 0xFFFFFFFF>>uint(width) {
			t.Fatalf("unsliced Insert width=%d changed upper bits: %#x", width, after)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		low     int
		high    int
		wantErr bool
	}{
		{name: "unsliced byte", width: 8, low: 0, high: Unsliced},
		{name: "full word", width: 32, low: 0, high: Unsliced},
		{name: "exact slice", width: 4, low: 4, high: 7},
		{name: "slice narrower than width", width: 8, low: 0, high: 3},
		{name: "zero width", width: 0, high: Unsliced, wantErr: true},
		{name: "too wide", width: 33, high: Unsliced, wantErr: true},
		{name: "inverted slice", width: 8, low: 5, high: 2, wantErr: true},
		{name: "slice wider than width", width: 2, low: 0, high: 3, wantErr: true},
		{name: "slice past bit 31", width: 8, low: 28, high: 35, wantErr: true},
		{name: "negative low", width: 8, low: -1, high: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.width, tt.low, tt.high)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidBinding) {
					t.Errorf("Validate() error = %v, want ErrInvalidBinding", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}
