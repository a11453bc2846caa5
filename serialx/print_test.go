package serialx

import (
	"bytes"
	"testing"
)

// printOutput runs fn against a fresh port and returns the bytes that
// reached the device.
func printOutput(t *testing.T, fn func(p *Port)) []byte {
	t.Helper()
	p, dev := newTestPort(t)
	fn(p)
	return dev.Transmitted()
}

func TestPrintInteger(t *testing.T) {
	tests := []struct {
		name string
		n    int64
		want string
	}{
		{"zero", 0, "0"},
		{"positive", 42, "42"},
		{"negative", -42, "-42"},
		{"large", 1234567890, "1234567890"},
		{"min-ish", -9223372036854775807, "-9223372036854775807"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := printOutput(t, func(p *Port) { p.PrintInteger(tt.n) })
			if string(got) != tt.want {
				t.Errorf("PrintInteger(%d) = %q; want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestPrintIntegerInBase(t *testing.T) {
	tests := []struct {
		name string
		n    int64
		base int
		want string
	}{
		{"hex", 255, 16, "FF"},
		{"binary", 5, 2, "101"},
		{"octal", 64, 8, "100"},
		{"base36 top digit", 35, 36, "Z"},
		{"negative hex", -255, 16, "-FF"},
		{"zero any base", 0, 2, "0"},
		{"bad base falls back to 10", 42, 1, "42"},
		{"bad base high falls back to 10", 42, 99, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := printOutput(t, func(p *Port) { p.PrintIntegerInBase(tt.n, tt.base) })
			if string(got) != tt.want {
				t.Errorf("PrintIntegerInBase(%d, %d) = %q; want %q", tt.n, tt.base, got, tt.want)
			}
		})
	}
}

func TestPrintFloat(t *testing.T) {
	tests := []struct {
		name string
		f    float64
		want string
	}{
		{"pi rounds fraction", 3.14159, "3.142"}, // 141.59 -> 142
		{"whole", 2.0, "2.0"},
		{"half", 1.5, "1.500"},
		{"negative", -1.25, "-1.250"},
		{"negative with zero integer part", -0.5, "-0.500"},
		{"negative rounds fraction", -3.14159, "-3.142"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := printOutput(t, func(p *Port) { p.PrintFloat(tt.f) })
			if string(got) != tt.want {
				t.Errorf("PrintFloat(%v) = %q; want %q", tt.f, got, tt.want)
			}
		})
	}
}

func TestPrintStringHelpers(t *testing.T) {
	got := printOutput(t, func(p *Port) {
		p.PrintString("ok ")
		p.PrintStaticString("ro")
		p.PrintByte('\n')
	})
	if !bytes.Equal(got, []byte("ok ro\n")) {
		t.Fatalf("got %q; want %q", got, "ok ro\n")
	}
}
