package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tessro/verse/internal/core"
)

func TestParseSetting(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    interface{}
		wantErr bool
	}{
		{"monitor.interval", "3000", 3000, false},
		{"monitor.interval", "fast", nil, true},
		{"spotify.rate_limit", "2.5", 2.5, false},
		{"monitor.auto_start", "false", false, false},
		{"monitor.auto_start", "maybe", nil, true},
		{"spotify.client_id", "abc123", "abc123", false},
		{"defaults.device", "Phone", nil, true},
		{"nodot", "x", nil, true},
		{"a.b.c", "x", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			section, field, got, err := parseSetting(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSetting() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if section+"."+field != tt.key {
				t.Errorf("section.field = %s.%s, want %s", section, field, tt.key)
			}
			if got != tt.want {
				t.Errorf("value = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"héllo wörld", 8, "héllo..."},
		{"abcdef", 3, "abc"},
	}

	for _, tt := range tests {
		if got := TruncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFormatProgress(t *testing.T) {
	tests := []struct {
		percent    int
		wantFilled int
	}{
		{0, 0},
		{50, 5},
		{100, 10},
		{150, 10},
		{-5, 0},
	}

	for _, tt := range tests {
		got := FormatProgress(tt.percent, 10)
		if n := strings.Count(got, "━"); n != tt.wantFilled {
			t.Errorf("FormatProgress(%d) filled = %d, want %d", tt.percent, n, tt.wantFilled)
		}
		if n := strings.Count(got, "━") + strings.Count(got, "─"); n != 10 {
			t.Errorf("FormatProgress(%d) width = %d, want 10", tt.percent, n)
		}
	}
}

func TestDeviceMatcher(t *testing.T) {
	match := deviceMatcher("living room")

	if !match(core.Device{ID: "x", Name: "Living Room"}) {
		t.Error("expected a case-insensitive name match")
	}
	if !deviceMatcher("abc")(core.Device{ID: "abc", Name: "Phone"}) {
		t.Error("expected an ID match")
	}
	if match(core.Device{ID: "y", Name: "Kitchen"}) {
		t.Error("unexpected match")
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTableWriter(&buf, "NAME", "KIND")
	table.Row("Pixel", "Smartphone")
	table.Flush()

	out := buf.String()
	if !strings.HasPrefix(out, "NAME") || !strings.Contains(out, "Pixel  ") {
		t.Errorf("unexpected table output:\n%s", out)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"auth", "config", "devices", "history", "serve", "status", "tail", "transfer", "ui", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd == rootCmd {
			t.Errorf("command %q not registered", name)
		}
	}
}
