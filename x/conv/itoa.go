package conv

// AppendUint appends the base-10 representation of n to dst.
// No allocations beyond dst growth; no fmt/strconv dependency.
func AppendUint(dst []byte, n uint64) []byte {
	var buf [20]byte
	i := len(buf)
	if n == 0 {
		i--
		buf[i] = '0'
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return append(dst, buf[i:]...)
}

// AppendInt appends the base-10 representation of n to dst.
func AppendInt(dst []byte, n int64) []byte {
	if n < 0 {
		dst = append(dst, '-')
		return AppendUint(dst, uint64(-n))
	}
	return AppendUint(dst, uint64(n))
}

// Itoa is the allocating convenience form of AppendInt.
func Itoa(n int) string { return string(AppendInt(nil, int64(n))) }
