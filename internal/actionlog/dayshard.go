package actionlog

import "fmt"

// civilFromDays converts a day count since 1970-01-01 (may be negative) into
// a proleptic Gregorian (year, month, day), using Howard Hinnant's
// days-from-civil algorithm run in reverse. Plain y/m/d arithmetic on a
// Time gets this right too, but the day-shard boundary is a pure function
// of an integer day count elsewhere in this package (shardDay below), so
// the calendar conversion is kept as an explicit, testable unit rather than
// routed back through time.Time.
func civilFromDays(z int64) (year int, month int, day int) {
	z += 719468 // shift epoch from 1970-01-01 to 0000-03-01
	era := z
	if z < 0 {
		era -= 146096
	}
	era /= 146097
	doe := z - era*146097                                   // [0, 146096]
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365   // [0, 399]
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100) // [0, 365]
	mp := (5*doy + 2) / 153                  // [0, 11]
	d := doy - (153*mp+2)/5 + 1              // [1, 31]
	var m int64
	if mp < 10 {
		m = mp + 3
	} else {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return int(y), int(m), int(d)
}

// shardDay returns the "YYYY-MM-DD" shard name for a Unix timestamp,
// computed from the integer day count rather than a timezone-sensitive
// Time.Format, so the shard boundary is pinned to UTC midnight regardless
// of how the caller constructed the timestamp.
func shardDay(unixSeconds int64) string {
	days := unixSeconds / 86400
	if unixSeconds%86400 < 0 {
		days--
	}
	y, m, d := civilFromDays(days)
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}
