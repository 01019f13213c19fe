//go:build !windows

package service

import "fmt"

// ManagementSupported reports whether install, uninstall, start and stop work here
const ManagementSupported = false

// RunService runs the app in the foreground; there is no service manager to attach to
func RunService(_ bool, app *Application) error {
	return app.Run()
}

func InstallService(string) error {
	return fmt.Errorf("install %s: %w", ServiceName, ErrUnsupportedPlatform)
}

func UninstallService() error {
	return fmt.Errorf("uninstall %s: %w", ServiceName, ErrUnsupportedPlatform)
}

func StartService() error {
	return fmt.Errorf("start %s: %w", ServiceName, ErrUnsupportedPlatform)
}

func StopService() error {
	return fmt.Errorf("stop %s: %w", ServiceName, ErrUnsupportedPlatform)
}

func IsWindowsService() (bool, error) {
	return false, nil
}
