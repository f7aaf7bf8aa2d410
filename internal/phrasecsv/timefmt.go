package phrasecsv

import (
	"fmt"
	"time"
)

// FormatOffset renders d as H:MM:SS with a six digit fraction when the
// offset is not a whole second, e.g. 0:00:01 or 0:01:02.500000. Offsets of a
// day or more get a "N day(s), " prefix.
func FormatOffset(d time.Duration) string {
	if d < 0 {
		return "-" + FormatOffset(-d)
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	micros := d / time.Microsecond

	out := fmt.Sprintf("%d:%02d:%02d", int64(h), int64(m), int64(s))
	if micros > 0 {
		out += fmt.Sprintf(".%06d", int64(micros))
	}
	switch {
	case days == 1:
		out = "1 day, " + out
	case days > 1:
		out = fmt.Sprintf("%d days, %s", int64(days), out)
	}
	return out
}
