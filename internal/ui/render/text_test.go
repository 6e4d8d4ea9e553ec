package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean text unchanged", "Living Room", "Living Room"},
		{"control characters removed", "Kitchen\x07\x1b", "Kitchen"},
		{"tab kept", "a\tb", "a\tb"},
		{"non-breaking space replaced", "Living\u00a0Room", "Living Room"},
		{"invalid byte dropped", "Desk\xff", "Desk"},
		{"multibyte kept", "Café €", "Café €"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{
			name:     "no truncation needed",
			input:    "spotify",
			maxWidth: 10,
			want:     "spotify",
		},
		{
			name:     "exact fit",
			input:    "spotify",
			maxWidth: 7,
			want:     "spotify",
		},
		{
			name:     "truncation with ellipsis",
			input:    "spotify:track:6rqhFgbbKwnb9MLmUQDhG6",
			maxWidth: 10,
			want:     "spotify...",
		},
		{
			name:     "very short max width",
			input:    "spotify",
			maxWidth: 3,
			want:     "...",
		},
		{
			name:     "sanitized before truncating",
			input:    "\x1bspotify",
			maxWidth: 10,
			want:     "spotify",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.maxWidth)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestTruncateEllipsis(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{
			name:     "no truncation needed",
			input:    "hello",
			maxWidth: 10,
			want:     "hello",
		},
		{
			name:     "truncation with single ellipsis",
			input:    "hello world",
			maxWidth: 8,
			want:     "hello w…",
		},
		{
			name:     "styled text keeps visible width",
			input:    "\x1b[1mhello world\x1b[0m",
			maxWidth: 8,
			want:     "hello w…",
		},
		{
			name:     "zero width",
			input:    "hello",
			maxWidth: 0,
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ansi.Strip(TruncateEllipsis(tt.input, tt.maxWidth))
			if got != tt.want {
				t.Errorf("TruncateEllipsis(%q, %d) = %q, want %q", tt.input, tt.maxWidth, got, tt.want)
			}
		})
	}
}

func TestPad(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"padding needed", "hello", 10, "hello     "},
		{"exact width", "hello", 5, "hello"},
		{"already wider", "hello world", 5, "hello world"},
		{"empty string", "", 5, "     "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pad(tt.input, tt.width)
			if got != tt.want {
				t.Errorf("Pad(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
			}
		})
	}
}

func TestRow(t *testing.T) {
	tests := []struct {
		name    string
		left    string
		right   string
		width   int
		wantLen int
	}{
		{"basic row", "left", "right", 20, 20},
		{"tight fit", "left", "right", 10, 10},
		{"overflow keeps one space", "left", "right", 4, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Row(tt.left, tt.right, tt.width)
			if len(got) != tt.wantLen {
				t.Errorf("Row(%q, %q, %d) length = %d, want %d", tt.left, tt.right, tt.width, len(got), tt.wantLen)
			}
			if !strings.HasPrefix(got, tt.left) || !strings.HasSuffix(got, tt.right) {
				t.Errorf("Row(%q, %q, %d) = %q", tt.left, tt.right, tt.width, got)
			}
		})
	}
}
