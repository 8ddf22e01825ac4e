package events

import "time"

// Window returns the inclusive bounds [00:00:00.000, 23:59:59.999] of the
// calendar day containing ref in loc.
func Window(ref time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	ref = ref.In(loc)
	y, m, d := ref.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
	return start, end
}
