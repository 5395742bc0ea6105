package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

var ErrNoWebURL = errors.New("web_url is not configured")

func Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}

	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", rawURL).Start()
	case "linux":
		return exec.Command("xdg-open", rawURL).Start()
	case "windows":
		// rundll32 avoids cmd's shell interpretation of the URL
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL).Start()
	default:
		return exec.Command("xdg-open", rawURL).Start()
	}
}

// PageURL joins a dashboard page such as "/alerts" onto the web base URL.
func PageURL(base, page string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", ErrNoWebURL
	}
	return url.JoinPath(base, page)
}

// OpenPage opens a page of the web dashboard.
func OpenPage(base, page string) error {
	u, err := PageURL(base, page)
	if err != nil {
		return err
	}
	return Open(u)
}
