package clock

import "time"

var epoch = time.Now()

// fallbackNow measures from process start using the monotonic reading
// carried by time.Time.
func fallbackNow() time.Duration {
	return time.Since(epoch)
}
