// Package browser hands an article URL to the desktop's web browser.
package browser

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Open launches the system browser on rawURL without waiting for it.
// Only absolute http(s) URLs are accepted.
func Open(rawURL string) error {
	if err := check(rawURL); err != nil {
		return err
	}
	cmd := commandFor(runtime.GOOS, os.Getenv("BROWSER"), rawURL)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching %s: %w", cmd.Path, err)
	}
	// Reap the child so it does not linger as a zombie
	go cmd.Wait()
	return nil
}

func check(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("refusing to open URL without a host")
	}
	return nil
}

// commandFor picks the opener for goos. A $BROWSER value wins; it may carry
// arguments but is never passed through a shell.
func commandFor(goos, browserEnv, rawURL string) *exec.Cmd {
	if fields := strings.Fields(browserEnv); len(fields) > 0 {
		return exec.Command(fields[0], append(fields[1:], rawURL)...)
	}
	switch goos {
	case "darwin":
		return exec.Command("open", rawURL)
	case "windows":
		// rundll32 avoids cmd /c start and its shell interpretation
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return exec.Command("xdg-open", rawURL)
	}
}
