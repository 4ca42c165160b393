// Package timelog models the Invoice Ninja task time_log attribute: a JSON
// array of [start, end] Unix-second pairs where a missing or zero end marks
// a running timer. Parsing validates the upstream shape instead of trusting
// it; all operations are value-semantics and never mutate their receiver.
package timelog

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Interval is a single time-log segment. End == 0 means the timer is still
// running (an open interval); otherwise the segment is closed.
type Interval struct {
	Start int64
	End   int64
}

// Open reports whether the interval has no end timestamp yet.
func (iv Interval) Open() bool {
	return iv.End == 0
}

// Seconds returns the closed duration of the interval, or 0 for open ones.
func (iv Interval) Seconds() int64 {
	if iv.Open() {
		return 0
	}
	return iv.End - iv.Start
}

// Log is an ordered sequence of intervals. A valid log has at most one open
// interval, and only in the last position.
type Log []Interval

var (
	// ErrRunning is returned by Start when the last interval is still open.
	ErrRunning = errors.New("timer already running")
	// ErrNotRunning is returned by Stop when no interval is open.
	ErrNotRunning = errors.New("no timer running")
)

// Parse decodes and validates a raw time_log value. Entries with more than
// two elements, non-numeric timestamps, an end before its start, or more
// than one open interval are rejected rather than guessed at.
func Parse(raw string) (Log, error) {
	if raw == "" {
		return Log{}, nil
	}
	var rows [][]int64
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, fmt.Errorf("malformed time log: %w", err)
	}

	log := make(Log, 0, len(rows))
	for i, row := range rows {
		switch len(row) {
		case 1:
			log = append(log, Interval{Start: row[0]})
		case 2:
			if row[1] != 0 && row[1] < row[0] {
				return nil, fmt.Errorf("time log entry %d ends before it starts", i+1)
			}
			log = append(log, Interval{Start: row[0], End: row[1]})
		default:
			return nil, fmt.Errorf("time log entry %d has %d elements, want 1 or 2", i+1, len(row))
		}
	}

	for i, iv := range log {
		if iv.Open() && i != len(log)-1 {
			return nil, fmt.Errorf("time log has an open entry before the last position")
		}
	}
	return log, nil
}

// Encode serialises the log back to the wire format. Open intervals are
// written as single-element arrays, matching what the Invoice Ninja web UI
// produces.
func (l Log) Encode() (string, error) {
	rows := make([][]int64, 0, len(l))
	for _, iv := range l {
		if iv.Open() {
			rows = append(rows, []int64{iv.Start})
		} else {
			rows = append(rows, []int64{iv.Start, iv.End})
		}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encoding time log: %w", err)
	}
	return string(data), nil
}

// Running reports whether the last interval is open.
func (l Log) Running() bool {
	return len(l) > 0 && l[len(l)-1].Open()
}

// ClosedSeconds sums (end - start) over closed intervals only. Open
// intervals contribute zero; billable time is never counted while a timer
// is still running.
func (l Log) ClosedSeconds() int64 {
	var total int64
	for _, iv := range l {
		total += iv.Seconds()
	}
	return total
}

// TotalSeconds sums all intervals, counting an open one up to now. Used for
// display only, never for billing.
func (l Log) TotalSeconds(now int64) int64 {
	total := l.ClosedSeconds()
	if l.Running() {
		total += now - l[len(l)-1].Start
	}
	return total
}

// Start appends a new open interval beginning at now. It fails with
// ErrRunning if the last interval is already open; the returned log is the
// original in that case.
func (l Log) Start(now int64) (Log, error) {
	if l.Running() {
		return l, ErrRunning
	}
	out := make(Log, len(l), len(l)+1)
	copy(out, l)
	return append(out, Interval{Start: now}), nil
}

// Stop closes the open interval at now and returns the new log along with
// the session duration in seconds. It fails with ErrNotRunning if no
// interval is open.
func (l Log) Stop(now int64) (Log, int64, error) {
	if !l.Running() {
		return l, 0, ErrNotRunning
	}
	out := make(Log, len(l))
	copy(out, l)
	last := &out[len(out)-1]
	last.End = now
	return out, last.End - last.Start, nil
}

// Append adds a fully closed interval, recording time after the fact. A
// running interval stays in the last position so the log remains valid.
func (l Log) Append(start, end int64) (Log, error) {
	if end < start {
		return l, fmt.Errorf("interval ends before it starts")
	}
	out := make(Log, len(l), len(l)+1)
	copy(out, l)
	if out.Running() {
		open := out[len(out)-1]
		out[len(out)-1] = Interval{Start: start, End: end}
		return append(out, open), nil
	}
	return append(out, Interval{Start: start, End: end}), nil
}

// Hours converts seconds to fractional hours.
func Hours(seconds int64) float64 {
	return float64(seconds) / 3600
}

// FormatDuration formats seconds as a human-readable string like "1h 40m" or "45m" or "30s".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}
