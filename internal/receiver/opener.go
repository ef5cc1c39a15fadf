package receiver

import (
	"os/exec"
	"runtime"
)

// Opener navigates to a URL in a new or existing browser window.
type Opener interface {
	Open(url string) error
}

// SystemOpener hands the URL to the desktop's default handler.
type SystemOpener struct{}

// Open implements Opener. It does not wait for the browser to exit.
func (SystemOpener) Open(url string) error {
	name, args := openCommand(runtime.GOOS)
	cmd := exec.Command(name, append(args, url)...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func openCommand(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}
