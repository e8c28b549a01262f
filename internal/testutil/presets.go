package testutil

import "time"

// WithStandardHistory adds a mix of recent and old commands for one chat.
//
//	vol-75    completed  1 minute ago   (newest)
//	vol-50    cancelled  2 minutes ago  (superseded by vol-75)
//	shot-1    failed     1 hour ago
//	lock-1    running    2 hours ago
//	old-1     completed  40 days ago
//	old-2     failed     60 days ago    (oldest)
func (b *Builder) WithStandardHistory(now time.Time) *Builder {
	return b.
		WithCommand("old-2", Name("battery"), StartedAt(now.Add(-60*24*time.Hour)), Failed("PC agent is not running")).
		WithCommand("old-1", Name("status"), StartedAt(now.Add(-40*24*time.Hour))).
		WithCommand("lock-1", Name("lock"), StartedAt(now.Add(-2*time.Hour)), Running()).
		WithCommand("shot-1", Name("screenshot"), StartedAt(now.Add(-time.Hour)), Failed("agent returned 500")).
		WithCommand("vol-50", Name("volume"), StartedAt(now.Add(-2*time.Minute)), State("cancelled"), Took(300*time.Millisecond)).
		WithCommand("vol-75", Name("volume"), StartedAt(now.Add(-time.Minute)), Took(120*time.Millisecond))
}
