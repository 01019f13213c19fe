package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"signflow/internal/service"
	"signflow/internal/version"
)

// managementFlags exist only where the service manager does
type managementFlags struct {
	install, uninstall, start, stop, debug *bool
}

func registerManagementFlags() managementFlags {
	if !service.ManagementSupported {
		return managementFlags{}
	}
	return managementFlags{
		install:   flag.Bool("install", false, "Install Windows service"),
		uninstall: flag.Bool("uninstall", false, "Uninstall Windows service"),
		start:     flag.Bool("start", false, "Start the service"),
		stop:      flag.Bool("stop", false, "Stop the service"),
		debug:     flag.Bool("debug", false, "Run under the service debug harness"),
	}
}

func set(b *bool) bool {
	return b != nil && *b
}

func main() {
	mgmt := registerManagementFlags()
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Println(version.ServiceName)
		fmt.Printf("Version: %s\n", version.Version)
		os.Exit(0)
	}

	// Get executable path
	exePath, err := os.Executable()
	if err != nil {
		log.Fatal(err)
	}

	// Change to executable directory for config loading
	if err := os.Chdir(filepath.Dir(exePath)); err != nil {
		log.Printf("Warning: could not change to executable directory: %v", err)
	}

	switch {
	case set(mgmt.install):
		if err := service.InstallService(exePath); err != nil {
			log.Fatalf("Failed to install service: %v", err)
		}
		fmt.Println("Service installed successfully")

		if err := service.StartService(); err != nil {
			log.Printf("Warning: Failed to start service: %v", err)
			fmt.Println("You may need to start the service manually")
		} else {
			fmt.Println("Service started")
		}

	case set(mgmt.uninstall):
		// a stopped or missing service is fine here
		_ = service.StopService()

		if err := service.UninstallService(); err != nil {
			log.Fatalf("Failed to uninstall service: %v", err)
		}
		fmt.Println("Service uninstalled successfully")

	case set(mgmt.start):
		if err := service.StartService(); err != nil {
			log.Fatalf("Failed to start service: %v", err)
		}
		fmt.Println("Service started")

	case set(mgmt.stop):
		if err := service.StopService(); err != nil {
			log.Fatalf("Failed to stop service: %v", err)
		}
		fmt.Println("Service stopped")

	default:
		isService, err := service.IsWindowsService()
		if err != nil {
			log.Printf("Warning: could not determine if running as service: %v", err)
		}

		app := service.NewApplication()

		if isService || set(mgmt.debug) {
			if err := service.RunService(set(mgmt.debug), app); err != nil {
				log.Fatalf("Service exited: %v", err)
			}
			return
		}

		fmt.Println(version.ServiceName)
		fmt.Printf("Version: %s\n", version.Version)
		fmt.Println("Running in console mode. Press Ctrl+C to stop.")
		if service.ManagementSupported {
			fmt.Println()
			fmt.Println("Available commands:")
			fmt.Println("  -install    Install as Windows service")
			fmt.Println("  -uninstall  Uninstall Windows service")
			fmt.Println("  -start      Start the service")
			fmt.Println("  -stop       Stop the service")
			fmt.Println("  -debug      Run in debug mode")
			fmt.Println("  -version    Show version")
		}
		fmt.Println()

		if err := app.Run(); err != nil {
			log.Fatal(err)
		}
	}
}
