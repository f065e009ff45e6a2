// Package progress derives percent complete, throughput and ETA from the byte
// counts of a running transfer.
package progress

import (
	"fmt"
	"math"
	"time"
)

const mebibyte = 1024 * 1024

// Stats is the raw result of Compute. The Has* flags mark which values are known.
type Stats struct {
	Percent     int
	HasPercent  bool
	BytesPerSec float64
	HasSpeed    bool
	ETASeconds  float64
	HasETA      bool
}

// Compute returns the progress of a transfer that has received bytes out of
// total (0 when unknown) after elapsed.
func Compute(received, total int64, elapsed time.Duration) Stats {
	var s Stats
	if total > 0 {
		s.Percent = int(math.Round(float64(received) / float64(total) * 100))
		s.HasPercent = true
	}
	secs := elapsed.Seconds()
	if secs <= 0 {
		return s
	}
	s.BytesPerSec = float64(received) / secs
	s.HasSpeed = true
	if total > 0 && s.BytesPerSec > 0 {
		s.ETASeconds = float64(total-received) / s.BytesPerSec
		s.HasETA = true
	}
	return s
}

// FormatETA renders seconds as "45s", "2m 5s" or "1h 23m".
func FormatETA(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", int(math.Round(seconds)))
	case seconds < 3600:
		minutes := int(math.Floor(seconds / 60))
		secs := int(math.Round(math.Mod(seconds, 60)))
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		hours := int(math.Floor(seconds / 3600))
		minutes := int(math.Floor(math.Mod(seconds, 3600) / 60))
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
}

// SpeedLabel renders a throughput in MiB/s with two decimals.
func SpeedLabel(bytesPerSec float64) string {
	return fmt.Sprintf("%.2f MB/s", bytesPerSec/mebibyte)
}

// Report is the presentation form of Stats. Speed and ETA are empty when unknown.
type Report struct {
	Percent    int
	HasPercent bool
	Speed      string
	ETA        string
}

// Report converts s into display strings.
func (s Stats) Report() Report {
	r := Report{Percent: s.Percent, HasPercent: s.HasPercent}
	if s.HasSpeed {
		r.Speed = SpeedLabel(s.BytesPerSec)
	}
	if s.HasETA {
		r.ETA = FormatETA(s.ETASeconds)
	}
	return r
}

// Meter tracks the start of one transfer and computes reports against a clock.
type Meter struct {
	start time.Time
	now   func() time.Time
	total int64
}

// NewMeter starts measuring a transfer of total bytes (0 when unknown).
// now may be nil to use time.Now.
func NewMeter(total int64, now func() time.Time) *Meter {
	if now == nil {
		now = time.Now
	}
	return &Meter{start: now(), now: now, total: total}
}

// Total returns the declared size.
func (m *Meter) Total() int64 {
	return m.total
}

// Elapsed returns the time since the meter started.
func (m *Meter) Elapsed() time.Duration {
	return m.now().Sub(m.start)
}

// Update computes the report for the cumulative received count.
func (m *Meter) Update(received int64) Report {
	return Compute(received, m.total, m.Elapsed()).Report()
}
