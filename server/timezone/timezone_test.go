package timezone

import (
	"testing"
	"time"
)

// TestParse 測試時區解析與空值回退
func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		tz      string
		wantErr bool
	}{
		{"empty falls back to UTC", "", false},
		{"UTC", "UTC", false},
		{"Asia/Taipei", "Asia/Taipei", false},
		{"America/New_York", "America/New_York", false},
		{"garbage", "Not/AZone", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := Parse(tt.tz)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Parse(%q) expected error, got location %v", tt.tz, loc)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.tz, err)
			}
			if tt.tz == "" && loc != time.UTC {
				t.Errorf("Parse(\"\") = %v, want UTC", loc)
			}
		})
	}
}

// TestDateKey 測試民用日期鍵在不同時區下的結果
func TestDateKey(t *testing.T) {
	taipei := MustParse(TimezoneTaipei)
	// 2026-08-22 23:30 UTC is already 2026-08-23 07:30 in Taipei.
	moment := time.Date(2026, 8, 22, 23, 30, 0, 0, time.UTC)

	if got := DateKey(moment, time.UTC); got != "2026-08-22" {
		t.Errorf("DateKey UTC = %q, want 2026-08-22", got)
	}
	if got := DateKey(moment, taipei); got != "2026-08-23" {
		t.Errorf("DateKey Taipei = %q, want 2026-08-23", got)
	}
}

// TestParseDateKey 測試日期鍵來回轉換
func TestParseDateKey(t *testing.T) {
	taipei := MustParse(TimezoneTaipei)
	day, err := ParseDateKey("2026-08-23", taipei)
	if err != nil {
		t.Fatalf("ParseDateKey error: %v", err)
	}
	if got := DateKey(day, taipei); got != "2026-08-23" {
		t.Errorf("round trip = %q, want 2026-08-23", got)
	}
	if _, err := ParseDateKey("23/08/2026", taipei); err == nil {
		t.Error("ParseDateKey accepted a malformed key")
	}
}

// TestStartEndOfDay 測試一天的邊界
func TestStartEndOfDay(t *testing.T) {
	taipei := MustParse(TimezoneTaipei)
	moment := time.Date(2026, 8, 23, 15, 4, 5, 0, taipei)

	start := StartOfDay(moment, taipei)
	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 {
		t.Errorf("StartOfDay = %v, want midnight", start)
	}
	end := EndOfDay(moment, taipei)
	if !end.After(moment) {
		t.Errorf("EndOfDay %v is not after %v", end, moment)
	}
	if !SameDay(start, end, taipei) {
		t.Error("start and end of the same day should share a date key")
	}
}

// TestDaysBetween 測試跨日差計算
func TestDaysBetween(t *testing.T) {
	taipei := MustParse(TimezoneTaipei)
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{
			"same day different clocks",
			time.Date(2026, 8, 23, 1, 0, 0, 0, taipei),
			time.Date(2026, 8, 23, 23, 59, 0, 0, taipei),
			0,
		},
		{
			"consecutive days",
			time.Date(2026, 8, 22, 23, 0, 0, 0, taipei),
			time.Date(2026, 8, 23, 0, 30, 0, 0, taipei),
			1,
		},
		{
			"gap of three days",
			time.Date(2026, 8, 20, 12, 0, 0, 0, taipei),
			time.Date(2026, 8, 23, 12, 0, 0, 0, taipei),
			3,
		},
		{
			"reversed order is negative",
			time.Date(2026, 8, 23, 12, 0, 0, 0, taipei),
			time.Date(2026, 8, 21, 12, 0, 0, 0, taipei),
			-2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.a, tt.b, taipei); got != tt.want {
				t.Errorf("DaysBetween = %d, want %d", got, tt.want)
			}
		})
	}
}
