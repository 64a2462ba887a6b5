// Package browser opens URLs in the user's default browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

var (
	goos    = runtime.GOOS
	command = exec.Command
)

// Open opens url in the default browser without waiting for it to exit.
func Open(url string) error {
	name, args, err := launcher(goos, url)
	if err != nil {
		return err
	}

	if err := command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

func launcher(os, url string) (string, []string, error) {
	switch os {
	case "darwin":
		return "open", []string{url}, nil
	case "linux", "freebsd", "openbsd":
		return "xdg-open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", os)
	}
}
