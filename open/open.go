// Package open hands URLs to the system's default handler or to a named application.
package open

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrUnsupportedScheme is returned for anything but http and https links.
var ErrUnsupportedScheme = errors.New("only http and https links can be opened")

// Start opens link without waiting for the handler to exit. An empty app uses the system default.
func Start(link, app string) error {
	if err := validate(link); err != nil {
		return err
	}

	cmd, ok := command(runtime.GOOS, link, app)
	if !ok {
		return fmt.Errorf("opening links is not supported on %s", runtime.GOOS)
	}
	return cmd.Start()
}

func validate(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrUnsupportedScheme
	}
	return nil
}

func command(goos, link, app string) (*exec.Cmd, bool) {
	switch goos {
	case "windows":
		if app != "" {
			// start treats & as a command separator.
			return exec.Command("cmd", "/C", "start", "", app, strings.ReplaceAll(link, "&", "^&")), true
		}
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", link), true
	case "darwin":
		if app != "" {
			return exec.Command("open", "-a", app, link), true
		}
		return exec.Command("open", link), true
	case "linux", "freebsd", "openbsd":
		if app != "" {
			return exec.Command(app, link), true
		}
		return exec.Command("xdg-open", link), true
	case "android":
		return exec.Command("termux-open", link), true
	default:
		return nil, false
	}
}
