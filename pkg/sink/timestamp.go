// Package sink formats and writes timestamped transcript lines.
package sink

import "fmt"

// FormatTimestamp renders ms as "MM:SS:mmm" with hours folded into the
// minutes modulus, matching the original CLI's format_timestamp_to_time:
// MM = (ms/60000) mod 60, SS = (ms/1000) mod 60, mmm = ms mod 1000.
//
// Hour rollover is intentional (spec §8 invariant 2); a run longer than
// ~60 minutes wraps MM back to 00 rather than growing a third digit.
func FormatTimestamp(ms int64) string {
	minutes := (ms / 60000) % 60
	seconds := (ms / 1000) % 60
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d:%03d", minutes, seconds, millis)
}
