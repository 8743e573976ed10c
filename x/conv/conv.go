// Package conv appends integers and bytes in text form to a byte slice
// without fmt or strconv. Callers keep one line buffer and reuse it.
package conv

const hexd = "0123456789ABCDEF"

// AppendUint appends n in base 10.
func AppendUint(dst []byte, n uint64) []byte {
	var tmp [20]byte
	i := len(tmp)
	for {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return append(dst, tmp[i:]...)
}

// AppendInt appends n in base 10 with a leading '-' when negative.
func AppendInt(dst []byte, n int64) []byte {
	if n < 0 {
		// -n overflows for MinInt64; the uint64 conversion wraps to the right magnitude.
		return AppendUint(append(dst, '-'), uint64(-n))
	}
	return AppendUint(dst, uint64(n))
}

// AppendHex8 appends b as "0xNN".
func AppendHex8(dst []byte, b byte) []byte {
	return append(dst, '0', 'x', hexd[b>>4], hexd[b&0xF])
}

// AppendHexBytes appends p as space-separated two-digit hex.
func AppendHexBytes(dst []byte, p []byte) []byte {
	for i, b := range p {
		if i > 0 {
			dst = append(dst, ' ')
		}
		dst = append(dst, hexd[b>>4], hexd[b&0xF])
	}
	return dst
}
