package download

import (
	"strconv"
	"strings"
)

var byteUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatBytes renders an approximate size with binary prefixes and up to two
// decimals ("1.5 KB", "12.34 MB"). Sizes above the GB range stay in GB.
// An absent size renders as "N/A".
func FormatBytes(n int64) string {
	if n <= 0 {
		return "N/A"
	}

	v := float64(n)
	unit := 0
	for v >= 1024 && unit < len(byteUnits)-1 {
		v /= 1024
		unit++
	}

	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s + " " + byteUnits[unit]
}
