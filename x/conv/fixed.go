package conv

// AppendFixed appends "<whole>.<frac>" with frac zero-padded to digits.
// frac is taken as-is (no rounding); values wider than digits are clamped
// to the largest representable fraction. digits of 0 omits the point.
func AppendFixed(dst []byte, whole uint64, frac uint32, digits int) []byte {
	dst = AppendUint(dst, whole)
	if digits <= 0 {
		return dst
	}
	lim := uint32(1)
	for i := 0; i < digits; i++ {
		lim *= 10
	}
	if frac >= lim {
		frac = lim - 1
	}
	dst = append(dst, '.')
	for div := lim / 10; div > 0; div /= 10 {
		dst = append(dst, byte('0'+(frac/div)%10))
	}
	return dst
}

// AppendSignedFixed is AppendFixed with a leading '-' when neg is set and
// the value is non-zero (no "-0.0").
func AppendSignedFixed(dst []byte, neg bool, whole uint64, frac uint32, digits int) []byte {
	if neg && (whole != 0 || frac != 0) {
		dst = append(dst, '-')
	}
	return AppendFixed(dst, whole, frac, digits)
}

// AppendHex8 appends "0x" and two uppercase hex digits.
func AppendHex8(dst []byte, b byte) []byte {
	const hexd = "0123456789ABCDEF"
	return append(dst, '0', 'x', hexd[b>>4], hexd[b&0xF])
}
