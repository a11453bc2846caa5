// serialx/print.go

// Formatting helpers layered on WriteByte. Sequential and non-reentrant:
// concurrent calls on the same Port will interleave their bytes.

package serialx

import "math"

// PrintByte emits a single byte.
func (p *Port) PrintByte(b byte) { _ = p.WriteByte(b) }

// PrintString emits the bytes of s in order.
func (p *Port) PrintString(s string) {
	for i := 0; i < len(s); i++ {
		_ = p.WriteByte(s[i])
	}
}

// PrintStaticString emits a string held in a read-only segment. Go string
// constants already live in immutable storage, so this is PrintString under
// another name; it exists for parity with flash-resident string helpers on
// microcontroller toolchains.
func (p *Port) PrintStaticString(s string) { p.PrintString(s) }

// PrintIntegerInBase emits n in the given base (2..36), most significant
// digit first, digits 0-9 then A-Z. A negative n is emitted as '-' followed
// by its magnitude; zero is emitted as the single byte '0'. Bases outside
// 2..36 fall back to base 10.
func (p *Port) PrintIntegerInBase(n int64, base int) {
	if base < 2 || base > 36 {
		base = 10
	}
	u := uint64(n)
	if n < 0 {
		_ = p.WriteByte('-')
		u = -u
	}
	if u == 0 {
		_ = p.WriteByte('0')
		return
	}
	var buf [64]byte // enough for base 2
	i := 0
	for u > 0 {
		buf[i] = byte(u % uint64(base))
		u /= uint64(base)
		i++
	}
	for ; i > 0; i-- {
		d := buf[i-1]
		if d < 10 {
			_ = p.WriteByte('0' + d)
		} else {
			_ = p.WriteByte('A' + d - 10)
		}
	}
}

// PrintInteger emits n in base 10.
func (p *Port) PrintInteger(n int64) { p.PrintIntegerInBase(n, 10) }

// PrintFloat emits the integer part, a '.', and the fractional part scaled
// by 1000 and rounded to the nearest integer. A negative value is emitted as
// a single leading '-' followed by its magnitude, so the sign survives even
// when the integer part alone would print as "0".
func (p *Port) PrintFloat(f float64) {
	if math.Signbit(f) {
		_ = p.WriteByte('-')
		f = math.Abs(f)
	}
	intPart, frac := math.Modf(f)
	p.PrintInteger(int64(intPart))
	_ = p.WriteByte('.')
	p.PrintInteger(int64(math.Round(frac * 1000)))
}
