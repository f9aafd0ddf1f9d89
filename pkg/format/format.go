// Package format renders byte counts and durations for humans.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const byteUnit = 1024

var byteUnits = []string{"Bytes", "KB", "MB", "GB"}

// ByteSize renders bytes in the largest unit of Bytes, KB, MB or GB whose
// scaled value is at least 1, rounded to two decimals with trailing zeros
// dropped: 1536 → "1.5 KB", 0 → "0 Bytes". Negative input is not supported.
func ByteSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	value := float64(bytes)
	unit := 0
	for value >= byteUnit && unit < len(byteUnits)-1 {
		value /= byteUnit
		unit++
	}

	return trimDecimals(value) + " " + byteUnits[unit]
}

// ByteRate renders a bytes-per-second value, e.g. "1.2 MB/s".
func ByteRate(bytesPerSecond float64) string {
	return ByteSize(int64(bytesPerSecond)) + "/s"
}

// Duration renders d as "< 1s", "Xs", "Xm Ys" or "Xh Ym". Leading zero units
// are omitted and the smallest unit is truncated, not rounded.
func Duration(d time.Duration) string {
	if d < time.Second {
		return "< 1s"
	}

	seconds := int64(d / time.Second)
	minutes := seconds / 60
	hours := minutes / 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

func trimDecimals(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
