package cli

import (
	"bytes"
	"strings"
	"testing"
)

// captureStdout redirects command output to a buffer for the test.
func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestStatusLine(t *testing.T) {
	tests := []struct {
		kind statusKind
		icon string
	}{
		{statusOK, "✓"},
		{statusFail, "✗"},
		{statusWarn, "!"},
		{statusInfo, "›"},
	}
	for _, tt := range tests {
		got := statusLine(tt.kind, "Rendered sales")
		if !strings.Contains(got, tt.icon) || !strings.HasSuffix(stripANSI(got), "Rendered sales") {
			t.Errorf("statusLine(%d) = %q", tt.kind, got)
		}
	}
}

func TestFrameSummary(t *testing.T) {
	tests := []struct {
		name    string
		summary frameSummary
		want    []string
		notWant []string
	}{
		{
			name:    "fresh frame",
			summary: frameSummary{Categories: 3, Series: 2, Bars: 6},
			want:    []string{"3 categories", "2 series", "6 bars", "fresh"},
			notWant: []string{"culled", "cached"},
		},
		{
			name:    "zoomed cached frame",
			summary: frameSummary{Categories: 10, Series: 2, Bars: 4, Culled: 16, Cached: true},
			want:    []string{"4 bars", "16 culled", "cached"},
			notWant: []string{"fresh"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.summary.String()
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("summary %q missing %q", got, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("summary %q should not contain %q", got, w)
				}
			}
		})
	}
}

func TestPrintHelpers(t *testing.T) {
	out := captureStdout(t)

	printArtifact("svg", "out/sales.svg")
	printKeyValue("Domain", formatSpan(-0.5, 2.5))
	printHint("Explore interactively", "moocn explore sales.csv")

	got := out.String()
	for _, want := range []string{"svg", "→", "out/sales.svg", "Domain", "-0.5 .. 2.5", "moocn explore sales.csv"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
	if n := strings.Count(got, "\n"); n != 3 {
		t.Errorf("wrote %d lines, want 3", n)
	}
}

func TestSwatch(t *testing.T) {
	if got := swatch("#ff0000"); !strings.ContainsRune(got, barRune) {
		t.Errorf("swatch = %q, want a bar glyph", got)
	}
}

// stripANSI drops terminal escape sequences from s.
func stripANSI(s string) string {
	var b strings.Builder
	esc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			esc = true
		case esc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			esc = false
		case !esc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
