package waffle

import "time"

// The daily cap resets at midnight KST (UTC+9) for everyone, regardless of
// where the server runs.
var kst = time.FixedZone("KST", 9*60*60)

// TodayStart returns the start of the current calendar day in KST for the
// given instant. The result is the same UTC instant no matter the host
// timezone of now.
func TodayStart(now time.Time) time.Time {
	local := now.In(kst)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, kst)
}
