package lifecycle

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/browsion/browsion-core/internal/browsionerr"
	"github.com/browsion/browsion-core/internal/profile"
)

// findExecPath locates a Chromium-family binary on PATH, trying the most
// specific headless builds first.
func findExecPath() (string, error) {
	for _, name := range []string{
		"headless_shell", "headless-shell",
		"chromium", "chromium-browser",
		"google-chrome", "google-chrome-stable",
		"/usr/bin/google-chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
	} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", browsionerr.New(browsionerr.KindLaunchFailed, "no Chromium-family browser found on PATH")
}

// buildArgs assembles the command line for one profile's browser process,
// bound to cdpPort and detached from any display the caller doesn't want.
func buildArgs(p profile.Profile, cdpPort int) []string {
	args := []string{
		fmt.Sprintf("--remote-debugging-port=%d", cdpPort),
		"--user-data-dir=" + p.UserDataDir,
		"--no-first-run",
		"--no-default-browser-check",
	}
	if os.Getuid() == 0 {
		args = append(args, "--no-sandbox")
	}
	if p.Headless {
		args = append(args, "--headless=new")
	}
	if p.Proxy != "" {
		args = append(args, "--proxy-server="+p.Proxy)
	}
	if p.Language != "" {
		args = append(args, "--lang="+p.Language)
	}
	args = append(args, p.ExtraArgs...)
	return args
}

// spawn starts the browser process for p, detached from this process's
// process group on POSIX so killing browsiond doesn't take the browser
// down with it.
func spawn(p profile.Profile, cdpPort int) (*os.Process, error) {
	execPath, err := findExecPath()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(execPath, buildArgs(p, cdpPort)...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return nil, browsionerr.New(browsionerr.KindLaunchFailed, "spawn %s: %v", execPath, err)
	}
	go func() { _ = cmd.Wait() }() // reap; we track liveness via os.FindProcess+Signal(0), not Wait's exit status

	return cmd.Process, nil
}

// processAlive reports whether pid still refers to a running process,
// the POSIX-portable way: FindProcess always succeeds on Unix, so the
// actual liveness check is Signal(0).
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

func killProcess(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	return proc.Signal(syscall.SIGTERM)
}
