package worker

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestProgressDrawsBar(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(4, true)
	p.out = &buf

	p.Update(2, 4, 1)
	p.Done()

	out := buf.String()
	if !strings.Contains(out, "2/4 maps") {
		t.Errorf("progress output missing counts: %q", out)
	}
	if !strings.Contains(out, "(1 failed)") {
		t.Errorf("progress output missing failure count: %q", out)
	}
	if !strings.Contains(out, "[===============---------------]") {
		t.Errorf("progress output missing half-filled bar: %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("Done must terminate the bar with a newline: %q", out)
	}
}

func TestProgressDisabledPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(3, false)
	p.out = &buf

	p.Update(3, 3, 0)
	p.Done()

	if buf.Len() != 0 {
		t.Errorf("disabled progress wrote output: %q", buf.String())
	}
	if !strings.Contains(p.Summary(), "Generated 3/3 maps (0 failed)") {
		t.Errorf("summary still reflects counts when disabled, got %q", p.Summary())
	}
}

func TestShortDuration(t *testing.T) {
	tests := []struct {
		name string
		secs int
		want string
	}{
		{"seconds", 42, "42s"},
		{"minutes", 90, "1m30s"},
		{"padded seconds", 61, "1m01s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shortDuration(time.Duration(tt.secs) * time.Second)
			if got != tt.want {
				t.Errorf("shortDuration(%ds) = %q, want %q", tt.secs, got, tt.want)
			}
		})
	}
}
