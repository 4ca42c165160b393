package timelog_test

import (
	"testing"

	"github.com/averden/invoice-ninja-mcp/internal/timelog"
)

func TestParseValid(t *testing.T) {
	tests := []struct {
		raw         string
		wantLen     int
		wantRunning bool
	}{
		{"", 0, false},
		{"[]", 0, false},
		{"[[100,200]]", 1, false},
		{"[[100,200],[300,400]]", 2, false},
		{"[[100]]", 1, true},
		{"[[100,200],[300]]", 2, true},
		{"[[100,0]]", 1, true},
	}
	for _, tt := range tests {
		log, err := timelog.Parse(tt.raw)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", tt.raw, err)
			continue
		}
		if len(log) != tt.wantLen {
			t.Errorf("Parse(%q) len = %d, want %d", tt.raw, len(log), tt.wantLen)
		}
		if log.Running() != tt.wantRunning {
			t.Errorf("Parse(%q).Running() = %v, want %v", tt.raw, log.Running(), tt.wantRunning)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	tests := []string{
		`[[100,200,300]]`,     // three elements
		`[["abc",200]]`,       // non-numeric timestamp
		`[[200,100]]`,         // end before start
		`[[100],[200]]`,       // open entry before the last position
		`[[100],[200,300]]`,   // same, closed entry after open one
		`{"start":100}`,       // not an array of arrays
		`[[100],[200],[300]]`, // several open entries
	}
	for _, raw := range tests {
		if _, err := timelog.Parse(raw); err == nil {
			t.Errorf("Parse(%q): expected error, got nil", raw)
		}
	}
}

func TestClosedSeconds(t *testing.T) {
	log, err := timelog.Parse("[[100,200],[300,450],[500]]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := log.ClosedSeconds(); got != 250 {
		t.Errorf("ClosedSeconds = %d, want 250", got)
	}
	// The open interval counts toward the display total only.
	if got := log.TotalSeconds(600); got != 350 {
		t.Errorf("TotalSeconds(600) = %d, want 350", got)
	}
}

func TestStartConflict(t *testing.T) {
	log, err := timelog.Parse("[[100]]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	updated, err := log.Start(200)
	if err != timelog.ErrRunning {
		t.Fatalf("Start on running log: err = %v, want ErrRunning", err)
	}
	if len(updated) != 1 {
		t.Errorf("log changed on conflicting Start: len = %d, want 1", len(updated))
	}
}

func TestStartAppends(t *testing.T) {
	log, err := timelog.Parse("[[100,200]]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	updated, err := log.Start(300)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(updated) != 2 || !updated[1].Open() || updated[1].Start != 300 {
		t.Errorf("Start result = %+v, want appended open interval at 300", updated)
	}
	// The original log is untouched.
	if len(log) != 1 {
		t.Errorf("original log mutated: len = %d, want 1", len(log))
	}
}

func TestStopWithoutOpenEntry(t *testing.T) {
	log, err := timelog.Parse("[[100,200]]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	updated, _, err := log.Stop(300)
	if err != timelog.ErrNotRunning {
		t.Fatalf("Stop on idle log: err = %v, want ErrNotRunning", err)
	}
	if len(updated) != 1 || updated[0].End != 200 {
		t.Errorf("log changed on failed Stop: %+v", updated)
	}
}

func TestStopClosesOnlyLastEntry(t *testing.T) {
	log, err := timelog.Parse("[[100,200],[300]]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	updated, session, err := log.Stop(450)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if session != 150 {
		t.Errorf("session = %d, want 150", session)
	}
	if updated[0].Start != 100 || updated[0].End != 200 {
		t.Errorf("earlier entry touched: %+v", updated[0])
	}
	if updated[1].End != 450 {
		t.Errorf("open entry not closed: %+v", updated[1])
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	raw := "[[100,200],[300]]"
	log, err := timelog.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	encoded, err := log.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if encoded != raw {
		t.Errorf("Encode = %q, want %q", encoded, raw)
	}
}

func TestAppend(t *testing.T) {
	var log timelog.Log
	log, err := log.Append(100, 9100)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if got := timelog.Hours(log.ClosedSeconds()); got != 2.5 {
		t.Errorf("Hours = %v, want 2.5", got)
	}
	if _, err := log.Append(200, 100); err == nil {
		t.Error("Append with end before start: expected error")
	}
}

func TestAppendKeepsOpenIntervalLast(t *testing.T) {
	log, err := timelog.Parse("[[100,200],[300]]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	log, err = log.Append(400, 500)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	encoded, err := log.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if encoded != "[[100,200],[400,500],[300]]" {
		t.Errorf("Encode = %q, open interval must stay last", encoded)
	}
	if _, err := timelog.Parse(encoded); err != nil {
		t.Errorf("re-parse of appended log failed: %v", err)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{90, "1m"},
		{5400, "1h 30m"},
	}
	for _, tt := range tests {
		if got := timelog.FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
