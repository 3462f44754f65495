package classifier

import (
	"math"
	"strconv"
)

// FormatSigned renders v with an explicit sign: "+1.5", "-0.5", "0".
func FormatSigned(v float64) string {
	if v == 0 {
		return "0"
	}
	s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
	if v < 0 {
		return "-" + s
	}
	return "+" + s
}

// FormatUnsigned renders the absolute value of v without trailing zeros.
func FormatUnsigned(v float64) string {
	return strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
}
