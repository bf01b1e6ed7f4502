package vm

import "testing"

func TestSignExtend(t *testing.T) {
	cases := []struct {
		x    uint16
		n    int
		want uint16
	}{
		{0x1F, 5, 0xFFFF},  // -1 in 5 bits
		{0x0F, 5, 0x000F},  // positive, top bit clear
		{0x10, 5, 0xFFF0},  // -16 in 5 bits
		{0x3F, 6, 0xFFFF},  // -1 in 6 bits
		{0x1FF, 9, 0xFFFF}, // -1 in 9 bits
		{0x0FF, 9, 0x00FF}, // positive in 9 bits
		{0x7FF, 11, 0xFFFF},
		{0x000, 9, 0x0000},
	}
	for _, c := range cases {
		if got := SignExtend(c.x, c.n); got != c.want {
			t.Errorf("SignExtend(0x%X, %d) = 0x%04X, want 0x%04X", c.x, c.n, got, c.want)
		}
	}
}

func TestUpdateFlags(t *testing.T) {
	var r Registers

	r.R[0] = 0
	r.UpdateFlags(0)
	if r.COND != FlagZRO {
		t.Errorf("zero value: COND = %v, want FlagZRO", r.COND)
	}

	r.R[0] = 0x8000
	r.UpdateFlags(0)
	if r.COND != FlagNEG {
		t.Errorf("negative value: COND = %v, want FlagNEG", r.COND)
	}

	r.R[0] = 1
	r.UpdateFlags(0)
	if r.COND != FlagPOS {
		t.Errorf("positive value: COND = %v, want FlagPOS", r.COND)
	}
}

func TestNewRegisters(t *testing.T) {
	r := NewRegisters()
	if r.PC != DefaultOrigin {
		t.Errorf("PC = 0x%04X, want 0x%04X", r.PC, DefaultOrigin)
	}
	if r.COND != FlagZRO {
		t.Errorf("COND = %v, want FlagZRO", r.COND)
	}
	for i, v := range r.R {
		if v != 0 {
			t.Errorf("R%d = %d, want 0", i, v)
		}
	}
}
