// Package reconnect holds the backoff schedule transports use when the host
// connection drops.
package reconnect

import "time"

var schedule = []time.Duration{
	500 * time.Millisecond, time.Second, time.Second,
	2 * time.Second, 5 * time.Second, 5 * time.Second,
	10 * time.Second,
}

// Delay returns the wait before the given reconnect attempt. Attempts past
// the end of the schedule wait 30 seconds.
func Delay(attempt int) time.Duration {
	if attempt >= 0 && attempt < len(schedule) {
		return schedule[attempt]
	}
	return 30 * time.Second
}
