package browser

import (
	"os/exec"
	"slices"
	"testing"
)

func TestLauncher(t *testing.T) {
	const url = "https://accounts.spotify.com/authorize?x=1"

	tests := []struct {
		os       string
		wantName string
		wantErr  bool
	}{
		{"darwin", "open", false},
		{"linux", "xdg-open", false},
		{"windows", "rundll32", false},
		{"plan9", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.os, func(t *testing.T) {
			name, args, err := launcher(tt.os, url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("launcher() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if !slices.Contains(args, url) {
				t.Errorf("args = %v, want them to carry the URL", args)
			}
		})
	}
}

func TestOpenStartsCommand(t *testing.T) {
	origOS, origCommand := goos, command
	t.Cleanup(func() { goos, command = origOS, origCommand })

	var gotName string
	var gotArgs []string
	goos = "linux"
	command = func(name string, args ...string) *exec.Cmd {
		gotName, gotArgs = name, args
		return exec.Command("true")
	}

	if err := Open("http://example.com"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if gotName != "xdg-open" || len(gotArgs) != 1 || gotArgs[0] != "http://example.com" {
		t.Errorf("ran %q %v", gotName, gotArgs)
	}
}

func TestOpenUnsupported(t *testing.T) {
	origOS := goos
	t.Cleanup(func() { goos = origOS })

	goos = "plan9"
	if err := Open("http://example.com"); err == nil {
		t.Error("Open() expected an error on an unsupported platform")
	}
}
