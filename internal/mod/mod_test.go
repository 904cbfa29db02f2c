package mod

import (
	"errors"
	"testing"
	"time"
)

func at(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func TestSelectMatch(t *testing.T) {
	tests := []struct {
		name        string
		releases    []Release
		window      Window
		wantVersion string
		wantFound   bool
	}{
		{
			name: "latest in window",
			releases: []Release{
				{Version: "1.0.0", ReleasedAt: at(5)},
				{Version: "1.1.0", ReleasedAt: at(10)},
				{Version: "1.2.0", ReleasedAt: at(15)},
			},
			window:      Window{After: at(4), Before: at(12)},
			wantVersion: "1.1.0",
			wantFound:   true,
		},
		{
			name: "unsorted input",
			releases: []Release{
				{Version: "0.3.0", ReleasedAt: at(9)},
				{Version: "0.1.0", ReleasedAt: at(1)},
				{Version: "0.2.0", ReleasedAt: at(7)},
			},
			window:      Window{After: at(0), Before: at(100)},
			wantVersion: "0.3.0",
			wantFound:   true,
		},
		{
			name: "bounds are exclusive",
			releases: []Release{
				{Version: "1.0.0", ReleasedAt: at(4)},
				{Version: "1.1.0", ReleasedAt: at(12)},
			},
			window:    Window{After: at(4), Before: at(12)},
			wantFound: false,
		},
		{
			name: "tie keeps first scanned",
			releases: []Release{
				{Version: "a", ReleasedAt: at(8)},
				{Version: "b", ReleasedAt: at(8)},
			},
			window:      Window{After: at(0), Before: at(10)},
			wantVersion: "a",
			wantFound:   true,
		},
		{
			name: "inverted window",
			releases: []Release{
				{Version: "1.0.0", ReleasedAt: at(7)},
			},
			window:    Window{After: at(10), Before: at(5)},
			wantFound: false,
		},
		{
			name:      "no releases",
			window:    Window{After: at(0), Before: at(10)},
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := SelectMatch(tt.releases, tt.window)
			if found != tt.wantFound {
				t.Fatalf("SelectMatch() found = %v, want %v", found, tt.wantFound)
			}
			if found && got.Version != tt.wantVersion {
				t.Errorf("SelectMatch() version = %q, want %q", got.Version, tt.wantVersion)
			}
		})
	}
}

func TestDefaultWindow(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	w := DefaultWindow(now)

	if !w.After.Equal(time.UnixMilli(1)) {
		t.Errorf("After = %v, want epoch+1ms", w.After)
	}
	if want := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC); !w.Before.Equal(want) {
		t.Errorf("Before = %v, want %v", w.Before, want)
	}
	if !w.Contains(now) {
		t.Error("default window should contain now")
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"2020-01-02T03:04:05.678000Z", time.Date(2020, 1, 2, 3, 4, 5, 678000000, time.UTC), false},
		{"2020-01-02T03:04:05Z", time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), false},
		{"2020-01-02T05:04:05+02:00", time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), false},
		{"2020-01-02T03:04:05", time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), false},
		{"yesterday", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTime(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTime(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTime) {
					t.Errorf("ParseTime(%q) error = %v, want ErrInvalidTime", tt.input, err)
				}
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	in := time.Date(2020, 1, 2, 3, 4, 5, 678912345, time.UTC)

	if got, want := FormatTime(in), "2020-01-02T03:04:05.678000Z"; got != want {
		t.Errorf("FormatTime() = %q, want %q", got, want)
	}
}
